package repository

// Schema kept portable across sqlite and postgres: TEXT columns, RFC3339
// timestamps, $N placeholders (understood by both drivers).
const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id             TEXT PRIMARY KEY,
	status         TEXT NOT NULL,
	input_filename TEXT NOT NULL,
	input_path     TEXT NOT NULL,
	result_path    TEXT,
	result_payload TEXT,
	llm_options    TEXT,
	error_message  TEXT,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS jobs_status_idx ON jobs (status, created_at);

CREATE TABLE IF NOT EXISTS job_logs (
	id         TEXT PRIMARY KEY,
	job_id     TEXT NOT NULL,
	level      TEXT NOT NULL,
	message    TEXT NOT NULL,
	extra      TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS job_logs_job_idx ON job_logs (job_id, created_at);
`
