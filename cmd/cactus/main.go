// cactus — сервер для передачи файлов в локальной сети без настройки.
//
//	cactus [up] [-p 8989] [-d .]   поднять сервер и объявить его через mDNS
//	cactus find                    найти сервер и открыть его в браузере
//	cactus send FILE...            найти сервер и отправить файлы
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

type command struct {
	name string
	run  func(args []string) error
}

var commands = []command{
	{name: "up", run: runUp},
	{name: "find", run: runFind},
	{name: "send", run: runSend},
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "cactus:", err)
		os.Exit(1)
	}
}

// dispatch выбирает подкоманду по первому аргументу; без неё выполняется up.
func dispatch(args []string) error {
	if len(args) > 0 {
		for _, c := range commands {
			if args[0] == c.name {
				return c.run(args[1:])
			}
		}
	}
	return runUp(args)
}
