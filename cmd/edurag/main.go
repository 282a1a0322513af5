// Package main is the entry point for the EduRAG service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/edurag/cmd/edurag/app"
)

func main() {
	app.NewApp().Run()
}
