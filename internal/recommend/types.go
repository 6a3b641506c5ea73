package recommend

import "github.com/AndreySuncov/bot-exam/internal/corpus"

type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Advice   string   `yaml:"advice"`
}

type ProgramRules struct {
	Rules    []Rule `yaml:"rules"`
	Fallback string `yaml:"fallback"`
}

type Triggers struct {
	Recommendation []string `yaml:"recommendation"`
	Experience     []string `yaml:"experience"`
}

// ordered keyword rules per program plus the shell trigger keywords
type Rules struct {
	Triggers Triggers                        `yaml:"triggers"`
	Fallback string                          `yaml:"fallback"`
	Programs map[corpus.Program]ProgramRules `yaml:"programs"`
}
