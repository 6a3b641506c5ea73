package config

import "flag"

// parses CLI flags for the scrape subcommand
func ParseScrapeFlags(args []string, dataDir string) (Flags, error) {
	fs := newFlagSet("scrape")
	dir := fs.String("data-dir", dataDir, "directory for scraped program texts, PDFs and tables")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{DataDir: *dir}, nil
}

// parses CLI flags for the build subcommand
func ParseBuildFlags(args []string, dataDir string) (Flags, error) {
	fs := newFlagSet("build")
	dir := fs.String("data-dir", dataDir, "directory holding <program>_program_info.txt files")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{DataDir: *dir}, nil
}

// parses CLI flags for the publish subcommand
func ParsePublishFlags(args []string) (Flags, error) {
	fs := newFlagSet("publish")
	clearFlag := fs.Bool("clear", false, "clear existing fragments before publishing")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{Clear: *clearFlag}, nil
}

// parses CLI flags for the table search tool. a trailing positional
// argument is taken as the keyword.
func ParseTablesFlags(args []string, dataDir string) (Flags, error) {
	fs := newFlagSet("tables")
	dir := fs.String("data-dir", dataDir, "directory holding <program>_tables folders")
	keyword := fs.String("keyword", "", "keyword to search for; prompted when empty")
	limit := fs.Int("limit", 10, "maximum number of rows to print")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	if *keyword == "" && fs.NArg() > 0 {
		*keyword = fs.Arg(0)
	}

	return Flags{DataDir: *dir, Keyword: *keyword, Limit: *limit}, nil
}

// parses CLI flags for the terminal client. endpoint defaults to
// BOT_API_ENDPOINT, then to the local server.
func ParseClientFlags(args []string) (ClientFlags, error) {
	fs := newFlagSet("tui")
	endpoint := fs.String("endpoint", getEnv("BOT_API_ENDPOINT", defaultEndpoint), "chat server base URL")
	line := fs.Bool("line", false, "plain line mode even on a terminal")
	ws := fs.Bool("ws", false, "talk over the websocket in line mode")

	if err := fs.Parse(args); err != nil {
		return ClientFlags{}, err
	}

	return ClientFlags{Endpoint: *endpoint, Line: *line, WebSocket: *ws}, nil
}

// returns default flags for running every ingester step
func DefaultIngestFlags(dataDir string) Flags {
	return Flags{DataDir: dataDir}
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}
