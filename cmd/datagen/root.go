package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "datagen",
	Short: "Datagen - schema-first synthetic relational dataset generator",
	Long: `Datagen reads a declarative schema document describing tables,
generators, modifier pipelines and cross-table effects, and produces a
reproducible relational dataset: generate builds and writes it, validate
regenerates it from the same schema and seed and scores it against the
schema's declared constraints and behavioral targets.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
}
