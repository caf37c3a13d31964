package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for the interactive session.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Earth-tone gradient, dark at the crest.
	s1 := termenv.String("  _        _            ").Foreground(p.Color("#a16207"))
	s2 := termenv.String(" | |_ __ _| |_   _ ___  ").Foreground(p.Color("#ca8a04"))
	s3 := termenv.String(" | __/ _` | | | | / __| ").Foreground(p.Color("#eab308"))
	s4 := termenv.String(" | || (_| | | |_| \\__ \\ ").Foreground(p.Color("#facc15"))
	s5 := termenv.String("  \\__\\__,_|_|\\__,_|___/ ").Foreground(p.Color("#fde047"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Printf("  slope stability session shell %s\n", version)
	fmt.Println()
}
