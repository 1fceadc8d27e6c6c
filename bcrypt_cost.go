//go:build !race

package credential

func passwordHashCost() int {
	return DefaultHashCost
}
