package main

import (
	"fmt"
)

func runTheme(e *env, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(e.out, "Theme: %s\n", e.theme.Mode())
		return nil
	}
	if args[0] != "toggle" {
		return fmt.Errorf("unknown theme action %q, want toggle", args[0])
	}

	mode, err := e.theme.Toggle()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Theme: %s\n", mode)
	return nil
}
