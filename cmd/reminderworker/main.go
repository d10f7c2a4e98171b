package main

import "github.com/laraib28/todo-web/services/reminderworker/cli"

func main() {
	cli.Execute()
}
