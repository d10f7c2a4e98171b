package main

import "github.com/laraib28/todo-web/services/api/cli"

func main() {
	cli.Execute()
}
