package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AndreySuncov/bot-exam/internal/config"
	"github.com/AndreySuncov/bot-exam/internal/corpus"
	"github.com/AndreySuncov/bot-exam/internal/logger"
	"github.com/AndreySuncov/bot-exam/internal/tables"
)

func main() {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	flags, err := config.ParseTablesFlags(os.Args[1:], cfg.DataDir)
	if err != nil {
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, flags); err != nil {
		logger.Fatal("table search failed", "error", err)
	}
}

// loads every curriculum table, asks for a keyword when none was given and
// prints the first matching rows
func run(in io.Reader, out io.Writer, flags config.Flags) error {
	rows, err := tables.LoadAll(flags.DataDir, corpus.KnownPrograms())
	if err != nil {
		return err
	}

	keyword := flags.Keyword

	if keyword == "" {
		fmt.Fprint(out, "Введите ключевое слово для поиска: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read keyword: %w", err)
		}

		keyword = strings.TrimSpace(line)
	}

	found := tables.FindByKeyword(rows, keyword)
	fmt.Fprintf(out, "Найдено %d строк:\n", len(found))

	limit := flags.Limit
	if limit <= 0 {
		limit = tables.DefaultLimit
	}

	for _, row := range found[:min(limit, len(found))] {
		fmt.Fprintf(out, "[%s] %s\n", row.Program, strings.Join(row.Cells, " | "))
	}

	return nil
}
