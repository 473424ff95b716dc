package store

const (
	createSchema = `CREATE TABLE IF NOT EXISTS tfidf_runs (
						run_id      TEXT PRIMARY KEY,
						corpus_size INTEGER,
						policy      TEXT,
						started_at  TIMESTAMPTZ NOT NULL
					);
					CREATE TABLE IF NOT EXISTS idf_weights (
						run_id   TEXT NOT NULL REFERENCES tfidf_runs(run_id) ON DELETE CASCADE,
						token_id BIGINT NOT NULL,
						idf      DOUBLE PRECISION NOT NULL,
						PRIMARY KEY (run_id, token_id)
					);
					CREATE TABLE IF NOT EXISTS tfidf_scores (
						run_id    TEXT NOT NULL REFERENCES tfidf_runs(run_id) ON DELETE CASCADE,
						accession TEXT NOT NULL,
						token_id  BIGINT NOT NULL,
						score     DOUBLE PRECISION NOT NULL,
						PRIMARY KEY (run_id, accession, token_id)
					)`
	insertRun = `INSERT INTO tfidf_runs (run_id, corpus_size, policy, started_at)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (run_id) DO UPDATE SET
						corpus_size = EXCLUDED.corpus_size,
						policy = EXCLUDED.policy`
	insertIDFWeights = `INSERT INTO idf_weights (run_id, token_id, idf)
							SELECT $1, unnest($2::bigint[]), unnest($3::float8[])
							ON CONFLICT (run_id, token_id) DO UPDATE SET
								idf = EXCLUDED.idf`
	deleteScores = `DELETE FROM tfidf_scores WHERE run_id = $1 AND accession = $2`
	insertScores = `INSERT INTO tfidf_scores (run_id, accession, token_id, score)
						SELECT $1, $2, unnest($3::bigint[]), unnest($4::float8[])`
)
