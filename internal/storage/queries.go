package storage

const (
	createExtensionQuery = "CREATE EXTENSION IF NOT EXISTS vector"

	createFragmentsTableQuery = `
		CREATE TABLE IF NOT EXISTS program_fragments (
			position   INTEGER PRIMARY KEY,
			program    TEXT NOT NULL,
			content    TEXT NOT NULL,
			embedding  vector NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	createFragmentsProgramIndexQuery = "CREATE INDEX IF NOT EXISTS program_fragments_program_idx ON program_fragments (program)"

	insertFragmentQuery = `
		INSERT INTO program_fragments (position, program, content, embedding)
		VALUES ($1, $2, $3, $4)
	`

	deleteAllFragmentsQuery = "DELETE FROM program_fragments"
	getFragmentCountQuery   = "SELECT COUNT(*) FROM program_fragments"

	listFragmentsQuery = `
		SELECT position, program, content, embedding
		FROM program_fragments
		ORDER BY position
	`
)
