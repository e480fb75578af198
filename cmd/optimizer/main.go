package main

import (
	"web-ui-optimizer/internal/bootstrap"
)

func main() {
	bootstrap.NewApp().Run()
}
