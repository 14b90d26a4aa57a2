package embedding

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// snapshotLimit bounds the rule text stored alongside a vector.
const snapshotLimit = 500

// Match is one similarity hit, surfaced as a duplicate suggestion to the
// human rule author.
type Match struct {
	RuleID   int64   `json:"rule_id"`
	RuleText string  `json:"rule_text"`
	Score    float64 `json:"similarity_score"`
}

// Index stores derived rule vectors for duplicate-detection suggestions. It
// is never authoritative: it may be stale, missing or inconsistent with the
// rule store without affecting enforcement.
type Index interface {
	Upsert(ctx context.Context, ruleID int64, text string) error
	Remove(ctx context.Context, ruleID int64) error
	FindSimilar(ctx context.Context, text string, topK int, threshold float64) ([]Match, error)
}

// PostgresIndex keeps vectors in the rule_embeddings table and scores them in
// process. The table is small (one row per rule version that is or was
// active), so a full scan per lookup is fine.
type PostgresIndex struct {
	db       *sqlx.DB
	embedder Embedder
	logger   *zap.Logger
}

func NewPostgresIndex(db *sqlx.DB, embedder Embedder, logger *zap.Logger) *PostgresIndex {
	return &PostgresIndex{db: db, embedder: embedder, logger: logger}
}

func (i *PostgresIndex) Upsert(ctx context.Context, ruleID int64, text string) error {
	vec := i.embedder.Embed(text)
	snapshot := text
	if len(snapshot) > snapshotLimit {
		snapshot = snapshot[:snapshotLimit]
	}
	_, err := i.db.ExecContext(ctx,
		`INSERT INTO rule_embeddings (rule_id, rule_text, vector)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (rule_id) DO UPDATE SET rule_text = $2, vector = $3, updated_at = now()`,
		ruleID, snapshot, EncodeVector(vec))
	return err
}

func (i *PostgresIndex) Remove(ctx context.Context, ruleID int64) error {
	_, err := i.db.ExecContext(ctx, `DELETE FROM rule_embeddings WHERE rule_id = $1`, ruleID)
	return err
}

func (i *PostgresIndex) FindSimilar(ctx context.Context, text string, topK int, threshold float64) ([]Match, error) {
	query := i.embedder.Embed(text)

	rows, err := i.db.QueryxContext(ctx, `SELECT rule_id, rule_text, vector FROM rule_embeddings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			ruleID   int64
			ruleText string
			raw      []byte
		)
		if err := rows.Scan(&ruleID, &ruleText, &raw); err != nil {
			return nil, err
		}
		score := Cosine(query, DecodeVector(raw))
		if score >= threshold {
			matches = append(matches, Match{RuleID: ruleID, RuleText: ruleText, Score: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortAndCap(&matches, topK)
	return matches, nil
}

func sortAndCap(matches *[]Match, topK int) {
	sort.SliceStable(*matches, func(a, b int) bool {
		return (*matches)[a].Score > (*matches)[b].Score
	})
	if topK > 0 && len(*matches) > topK {
		*matches = (*matches)[:topK]
	}
}
