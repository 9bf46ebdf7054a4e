package memdb

import (
	"cmp"
	"context"
	"fmt"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

func (d *DB) ListRepertoire(ctx context.Context) ([]model.RepertoireItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.state.repertoire, func(a, b model.RepertoireItem) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	}), nil
}

func (d *DB) CountRepertoire(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.state.repertoire), nil
}

func (d *DB) GetRepertoireItem(ctx context.Context, id string) (*model.RepertoireItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	item, ok := d.state.repertoire[id]
	if !ok {
		return nil, fmt.Errorf("repertoire item %s: %w", id, db.ErrNotFound)
	}
	return &item, nil
}

func (d *DB) InsertRepertoireItem(ctx context.Context, item *model.RepertoireItem) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	item.ID = newID(item.ID)
	if _, exists := d.state.repertoire[item.ID]; exists {
		return fmt.Errorf("repertoire item %s: %w", item.ID, db.ErrConflict)
	}
	item.CreatedAt = d.stamp(item.CreatedAt)
	d.state.repertoire[item.ID] = *item
	d.emit(db.CollectionRepertoire, live.KindAdded, item.ID, "")
	return nil
}

func (d *DB) UpdateRepertoireItem(ctx context.Context, item *model.RepertoireItem) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.state.repertoire[item.ID]
	if !ok {
		return fmt.Errorf("repertoire item %s: %w", item.ID, db.ErrNotFound)
	}
	item.CreatedAt = existing.CreatedAt
	d.state.repertoire[item.ID] = *item
	d.emit(db.CollectionRepertoire, live.KindModified, item.ID, "")
	return nil
}

func (d *DB) DeleteRepertoireItem(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.repertoire[id]; !ok {
		return fmt.Errorf("repertoire item %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.repertoire, id)
	d.emit(db.CollectionRepertoire, live.KindRemoved, id, "")
	return nil
}

func compareMedia(a, b model.MediaAsset) int {
	return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
}

func (d *DB) ListMedia(ctx context.Context, repertoireID string) ([]model.MediaAsset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var assets []model.MediaAsset
	for _, a := range sortedValues(d.state.media, compareMedia) {
		if a.RepertoireID == repertoireID {
			assets = append(assets, a)
		}
	}
	return assets, nil
}

func (d *DB) GetMedia(ctx context.Context, id string) (*model.MediaAsset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	asset, ok := d.state.media[id]
	if !ok {
		return nil, fmt.Errorf("media %s: %w", id, db.ErrNotFound)
	}
	return &asset, nil
}

func (d *DB) InsertMedia(ctx context.Context, asset *model.MediaAsset) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	asset.ID = newID(asset.ID)
	if _, exists := d.state.media[asset.ID]; exists {
		return fmt.Errorf("media %s: %w", asset.ID, db.ErrConflict)
	}
	asset.CreatedAt = d.stamp(asset.CreatedAt)
	d.state.media[asset.ID] = *asset
	d.emit(db.CollectionMedia, live.KindAdded, asset.ID, "")
	return nil
}

func (d *DB) DeleteMedia(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.media[id]; !ok {
		return fmt.Errorf("media %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.media, id)
	d.emit(db.CollectionMedia, live.KindRemoved, id, "")
	return nil
}

func (d *DB) DeleteMediaForRepertoire(ctx context.Context, repertoireID string) ([]model.MediaAsset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var removed []model.MediaAsset
	for _, a := range sortedValues(d.state.media, compareMedia) {
		if a.RepertoireID == repertoireID {
			delete(d.state.media, a.ID)
			d.emit(db.CollectionMedia, live.KindRemoved, a.ID, "")
			removed = append(removed, a)
		}
	}
	return removed, nil
}

func (d *DB) ListQuestions(ctx context.Context) ([]model.Question, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	questions := sortedValues(d.state.questions, func(a, b model.Question) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Text, b.Text), cmp.Compare(a.ID, b.ID))
	})
	for i := range questions {
		questions[i] = cloneQuestion(questions[i])
	}
	return questions, nil
}

func (d *DB) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	question, ok := d.state.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, db.ErrNotFound)
	}
	question = cloneQuestion(question)
	return &question, nil
}

func (d *DB) InsertQuestion(ctx context.Context, question *model.Question) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	question.ID = newID(question.ID)
	if _, exists := d.state.questions[question.ID]; exists {
		return fmt.Errorf("question %s: %w", question.ID, db.ErrConflict)
	}
	d.state.questions[question.ID] = cloneQuestion(*question)
	d.emit(db.CollectionQuestions, live.KindAdded, question.ID, "")
	return nil
}

func (d *DB) UpdateQuestion(ctx context.Context, question *model.Question) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.questions[question.ID]; !ok {
		return fmt.Errorf("question %s: %w", question.ID, db.ErrNotFound)
	}
	d.state.questions[question.ID] = cloneQuestion(*question)
	d.emit(db.CollectionQuestions, live.KindModified, question.ID, "")
	return nil
}

func (d *DB) DeleteQuestion(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.questions[id]; !ok {
		return fmt.Errorf("question %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.questions, id)
	d.emit(db.CollectionQuestions, live.KindRemoved, id, "")
	return nil
}

func (d *DB) ListQuizResults(ctx context.Context) ([]model.QuizResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.state.results, func(a, b model.QuizResult) int {
		return cmp.Or(b.Timestamp.Compare(a.Timestamp), cmp.Compare(a.ID, b.ID))
	}), nil
}

func (d *DB) InsertQuizResult(ctx context.Context, result *model.QuizResult) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	result.ID = newID(result.ID)
	if _, exists := d.state.results[result.ID]; exists {
		return fmt.Errorf("quiz result %s: %w", result.ID, db.ErrConflict)
	}
	result.Timestamp = d.stamp(result.Timestamp)
	d.state.results[result.ID] = *result
	d.emit(db.CollectionQuizResults, live.KindAdded, result.ID, result.UserID)
	return nil
}

func (d *DB) ListPolls(ctx context.Context) ([]model.Poll, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	polls := sortedValues(d.state.polls, func(a, b model.Poll) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	for i := range polls {
		polls[i] = clonePoll(polls[i])
	}
	return polls, nil
}

func (d *DB) GetPoll(ctx context.Context, id string) (*model.Poll, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	poll, ok := d.state.polls[id]
	if !ok {
		return nil, fmt.Errorf("poll %s: %w", id, db.ErrNotFound)
	}
	poll = clonePoll(poll)
	return &poll, nil
}

func (d *DB) InsertPoll(ctx context.Context, poll *model.Poll) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	poll.ID = newID(poll.ID)
	if _, exists := d.state.polls[poll.ID]; exists {
		return fmt.Errorf("poll %s: %w", poll.ID, db.ErrConflict)
	}
	poll.CreatedAt = d.stamp(poll.CreatedAt)
	if poll.Votes == nil {
		poll.Votes = map[string]int{}
	}
	d.state.polls[poll.ID] = clonePoll(*poll)
	d.emit(db.CollectionPolls, live.KindAdded, poll.ID, "")
	return nil
}

func (d *DB) DeletePoll(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.polls[id]; !ok {
		return fmt.Errorf("poll %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.polls, id)
	d.emit(db.CollectionPolls, live.KindRemoved, id, "")
	return nil
}

func (d *DB) SetPollActive(ctx context.Context, id string, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	poll, ok := d.state.polls[id]
	if !ok {
		return fmt.Errorf("poll %s: %w", id, db.ErrNotFound)
	}
	poll.IsActive = active
	d.state.polls[id] = poll
	d.emit(db.CollectionPolls, live.KindModified, id, "")
	return nil
}

func (d *DB) SetVote(ctx context.Context, pollID, voterID string, option int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	poll, ok := d.state.polls[pollID]
	if !ok {
		return fmt.Errorf("poll %s: %w", pollID, db.ErrNotFound)
	}
	poll = clonePoll(poll)
	poll.Votes[voterID] = option
	d.state.polls[pollID] = poll
	d.emit(db.CollectionPolls, live.KindModified, pollID, "")
	return nil
}
