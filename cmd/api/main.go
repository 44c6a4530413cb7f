// Command api runs the Mealguard JSON API server
package main

import (
	"go.uber.org/fx"

	"github.com/alchemorsel/mealguard/internal/infrastructure/container"
)

func main() {
	fx.New(
		fx.NopLogger,
		container.Module,
	).Run()
}
