package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/sir_venger/cactus/pkg/dropclient"
)

// runSend находит сервер и загружает на него файлы из аргументов.
func runSend(args []string) error {
	fs := pflag.NewFlagSet("send", pflag.ContinueOnError)
	timeout := fs.Duration("timeout", 0, "discovery timeout (0 waits until interrupted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: cactus send [--timeout d] FILE...")
	}
	if _, err := loadConfig(""); err != nil {
		return err
	}

	var total uint64
	for _, p := range fs.Args() {
		st, err := os.Stat(p)
		if err != nil {
			return err
		}
		if st.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
		total += uint64(st.Size())
	}

	inst, err := locate(*timeout)
	if err != nil {
		return err
	}

	url := inst.URL()
	fmt.Printf("Sending %d file(s), %s to %s\n", fs.NArg(), humanize.Bytes(total), url)

	n, err := dropclient.New().Upload(context.Background(), url, fs.Args()...)
	if err != nil {
		return err
	}
	fmt.Printf("%d files uploaded.\n", n)
	if n < fs.NArg() {
		return fmt.Errorf("%d of %d files were not saved", fs.NArg()-n, fs.NArg())
	}
	return nil
}
