package corpus

// identifies one of the academic programs the assistant knows about
type Program string

const (
	ProgramAI        Program = "ai"
	ProgramAIProduct Program = "ai_product"
)

// default artifact names, relative to the data directory
const (
	DefaultCorpusFile     = "corpus.json"
	DefaultEmbeddingsFile = "embeddings.json"
)

// a unit of retrievable text tagged with its program
type Fragment struct {
	Text    string
	Program Program
}

// ordered fragment texts with their program tags.
// position i of Texts/Meta corresponds to row i of the Index.
type Corpus struct {
	Texts []string `json:"texts"`
	Meta  []string `json:"meta"`
}

// one embedding vector per corpus fragment, rows aligned with the corpus
type Index [][]float32

// a corpus and its index loaded together
type Snapshot struct {
	Corpus Corpus
	Index  Index
}
