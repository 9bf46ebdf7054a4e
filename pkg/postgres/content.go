package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/folkbase/folkbase/pkg/core/model"
)

const repertoireColumns = `id, title, type, difficulty, youtube_link, drive_link, description, created_at`

func scanRepertoireItem(row pgx.Row) (model.RepertoireItem, error) {
	var r model.RepertoireItem
	err := row.Scan(&r.ID, &r.Title, &r.Type, &r.Difficulty, &r.YoutubeLink, &r.DriveLink, &r.Description, &r.CreatedAt)
	return r, err
}

func (d *DB) ListRepertoire(ctx context.Context) ([]model.RepertoireItem, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+repertoireColumns+`
		FROM repertoire
		WHERE team_id = $1
		ORDER BY created_at DESC, id
	`, d.team)
	if err != nil {
		return nil, fmt.Errorf("failed to query repertoire: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RepertoireItem, error) {
		return scanRepertoireItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan repertoire item: %w", err)
	}
	return items, nil
}

func (d *DB) CountRepertoire(ctx context.Context) (int, error) {
	var n int
	if err := d.q.QueryRow(ctx, `SELECT COUNT(*) FROM repertoire WHERE team_id = $1`, d.team).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count repertoire: %w", err)
	}
	return n, nil
}

func (d *DB) GetRepertoireItem(ctx context.Context, id string) (*model.RepertoireItem, error) {
	r, err := scanRepertoireItem(d.q.QueryRow(ctx, `
		SELECT `+repertoireColumns+` FROM repertoire WHERE team_id = $1 AND id = $2
	`, d.team, id))
	if err != nil {
		return nil, mapError(err, "repertoire item "+id)
	}
	return &r, nil
}

func (d *DB) InsertRepertoireItem(ctx context.Context, r *model.RepertoireItem) error {
	r.ID = newID(r.ID)
	r.CreatedAt = stamp(r.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO repertoire (id, team_id, title, type, difficulty, youtube_link, drive_link, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.ID, d.team, r.Title, r.Type, r.Difficulty, r.YoutubeLink, r.DriveLink, r.Description, r.CreatedAt)
	if err != nil {
		return mapError(err, "repertoire item "+r.ID)
	}
	return nil
}

func (d *DB) UpdateRepertoireItem(ctx context.Context, r *model.RepertoireItem) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE repertoire SET title = $3, type = $4, difficulty = $5, youtube_link = $6,
			drive_link = $7, description = $8
		WHERE team_id = $1 AND id = $2
	`, d.team, r.ID, r.Title, r.Type, r.Difficulty, r.YoutubeLink, r.DriveLink, r.Description)
	if err != nil {
		return mapError(err, "repertoire item "+r.ID)
	}
	return expectRow(tag, "repertoire item "+r.ID)
}

func (d *DB) DeleteRepertoireItem(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM repertoire WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "repertoire item "+id)
	}
	return expectRow(tag, "repertoire item "+id)
}

const mediaColumns = `id, repertoire_id, file_name, file_type, storage_path, download_url, created_at`

func collectMedia(rows pgx.Rows) ([]model.MediaAsset, error) {
	assets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.MediaAsset, error) {
		var a model.MediaAsset
		err := row.Scan(&a.ID, &a.RepertoireID, &a.FileName, &a.FileType, &a.StoragePath, &a.DownloadURL, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan media asset: %w", err)
	}
	return assets, nil
}

func (d *DB) ListMedia(ctx context.Context, repertoireID string) ([]model.MediaAsset, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE team_id = $1 AND repertoire_id = $2
		ORDER BY created_at, id
	`, d.team, repertoireID)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	return collectMedia(rows)
}

func (d *DB) GetMedia(ctx context.Context, id string) (*model.MediaAsset, error) {
	var a model.MediaAsset
	err := d.q.QueryRow(ctx, `
		SELECT `+mediaColumns+` FROM media WHERE team_id = $1 AND id = $2
	`, d.team, id).Scan(&a.ID, &a.RepertoireID, &a.FileName, &a.FileType, &a.StoragePath, &a.DownloadURL, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err, "media asset "+id)
	}
	return &a, nil
}

func (d *DB) InsertMedia(ctx context.Context, a *model.MediaAsset) error {
	a.ID = newID(a.ID)
	a.CreatedAt = stamp(a.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO media (id, team_id, repertoire_id, file_name, file_type, storage_path, download_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, d.team, a.RepertoireID, a.FileName, a.FileType, a.StoragePath, a.DownloadURL, a.CreatedAt)
	if err != nil {
		return mapError(err, "media asset "+a.ID)
	}
	return nil
}

func (d *DB) DeleteMedia(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM media WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "media asset "+id)
	}
	return expectRow(tag, "media asset "+id)
}

func (d *DB) DeleteMediaForRepertoire(ctx context.Context, repertoireID string) ([]model.MediaAsset, error) {
	rows, err := d.q.Query(ctx, `
		DELETE FROM media
		WHERE team_id = $1 AND repertoire_id = $2
		RETURNING `+mediaColumns, d.team, repertoireID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete media for repertoire item %s: %w", repertoireID, err)
	}
	return collectMedia(rows)
}

const questionColumns = `id, question_text, options, correct_option_index, category`

func scanQuestion(row pgx.Row) (model.Question, error) {
	var q model.Question
	err := row.Scan(&q.ID, &q.Text, &q.Options, &q.CorrectOptionIndex, &q.Category)
	return q, err
}

func (d *DB) ListQuestions(ctx context.Context) ([]model.Question, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE team_id = $1
		ORDER BY category, question_text, id
	`, d.team)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Question, error) {
		return scanQuestion(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan question: %w", err)
	}
	return questions, nil
}

func (d *DB) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	q, err := scanQuestion(d.q.QueryRow(ctx, `
		SELECT `+questionColumns+` FROM questions WHERE team_id = $1 AND id = $2
	`, d.team, id))
	if err != nil {
		return nil, mapError(err, "question "+id)
	}
	return &q, nil
}

func (d *DB) InsertQuestion(ctx context.Context, q *model.Question) error {
	q.ID = newID(q.ID)
	_, err := d.q.Exec(ctx, `
		INSERT INTO questions (id, team_id, question_text, options, correct_option_index, category)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, q.ID, d.team, q.Text, q.Options, q.CorrectOptionIndex, q.Category)
	if err != nil {
		return mapError(err, "question "+q.ID)
	}
	return nil
}

func (d *DB) UpdateQuestion(ctx context.Context, q *model.Question) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE questions SET question_text = $3, options = $4, correct_option_index = $5, category = $6
		WHERE team_id = $1 AND id = $2
	`, d.team, q.ID, q.Text, q.Options, q.CorrectOptionIndex, q.Category)
	if err != nil {
		return mapError(err, "question "+q.ID)
	}
	return expectRow(tag, "question "+q.ID)
}

func (d *DB) DeleteQuestion(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM questions WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "question "+id)
	}
	return expectRow(tag, "question "+id)
}

// ListQuizResults retrieves results newest first
func (d *DB) ListQuizResults(ctx context.Context) ([]model.QuizResult, error) {
	rows, err := d.q.Query(ctx, `
		SELECT id, user_id, user_name, score, total_questions, timestamp
		FROM quiz_results
		WHERE team_id = $1
		ORDER BY timestamp DESC, id
	`, d.team)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz results: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.QuizResult, error) {
		var r model.QuizResult
		err := row.Scan(&r.ID, &r.UserID, &r.UserName, &r.Score, &r.TotalQuestions, &r.Timestamp)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan quiz result: %w", err)
	}
	return results, nil
}

func (d *DB) InsertQuizResult(ctx context.Context, r *model.QuizResult) error {
	r.ID = newID(r.ID)
	r.Timestamp = stamp(r.Timestamp)
	_, err := d.q.Exec(ctx, `
		INSERT INTO quiz_results (id, team_id, user_id, user_name, score, total_questions, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, d.team, r.UserID, r.UserName, r.Score, r.TotalQuestions, r.Timestamp)
	if err != nil {
		return mapError(err, "quiz result "+r.ID)
	}
	return nil
}

const pollColumns = `id, question, options, votes, is_active, created_by, created_at`

func scanPoll(row pgx.Row) (model.Poll, error) {
	var p model.Poll
	err := row.Scan(&p.ID, &p.Question, &p.Options, &p.Votes, &p.IsActive, &p.CreatedBy, &p.CreatedAt)
	if p.Votes == nil {
		p.Votes = map[string]int{}
	}
	return p, err
}

func (d *DB) ListPolls(ctx context.Context) ([]model.Poll, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+pollColumns+`
		FROM polls
		WHERE team_id = $1
		ORDER BY created_at DESC, id
	`, d.team)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	polls, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Poll, error) {
		return scanPoll(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan poll: %w", err)
	}
	return polls, nil
}

func (d *DB) GetPoll(ctx context.Context, id string) (*model.Poll, error) {
	p, err := scanPoll(d.q.QueryRow(ctx, `
		SELECT `+pollColumns+` FROM polls WHERE team_id = $1 AND id = $2
	`, d.team, id))
	if err != nil {
		return nil, mapError(err, "poll "+id)
	}
	return &p, nil
}

func (d *DB) InsertPoll(ctx context.Context, p *model.Poll) error {
	p.ID = newID(p.ID)
	p.CreatedAt = stamp(p.CreatedAt)
	if p.Votes == nil {
		p.Votes = map[string]int{}
	}
	_, err := d.q.Exec(ctx, `
		INSERT INTO polls (id, team_id, question, options, votes, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, d.team, p.Question, p.Options, p.Votes, p.IsActive, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return mapError(err, "poll "+p.ID)
	}
	return nil
}

func (d *DB) DeletePoll(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM polls WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "poll "+id)
	}
	return expectRow(tag, "poll "+id)
}

func (d *DB) SetPollActive(ctx context.Context, id string, active bool) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE polls SET is_active = $3 WHERE team_id = $1 AND id = $2
	`, d.team, id, active)
	if err != nil {
		return mapError(err, "poll "+id)
	}
	return expectRow(tag, "poll "+id)
}

// SetVote writes one key of the votes object so concurrent voters never
// overwrite each other's choices.
func (d *DB) SetVote(ctx context.Context, pollID, voterID string, option int) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE polls SET votes = jsonb_set(votes, ARRAY[$3::text], to_jsonb($4::int), true)
		WHERE team_id = $1 AND id = $2
	`, d.team, pollID, voterID, option)
	if err != nil {
		return mapError(err, "poll "+pollID)
	}
	return expectRow(tag, "poll "+pollID)
}
