package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// ProgramStore defines the store operations needed to edit a concert program
type ProgramStore interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	SetProgram(ctx context.Context, eventID string, program []model.ProgramItem) error
}

// SaveProgram replaces a concert's running order. Items without an id get one.
func SaveProgram(ctx context.Context, store ProgramStore, logger *zap.Logger, eventID string, program model.Program) (result model.Program, err error) {
	defer func() { metrics.RecordMutation(db.CollectionEvents, "program", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if event.Type != model.EventConcert {
		return nil, ErrNotConcert
	}

	if program == nil {
		program = model.Program{}
	}
	for i := range program {
		if program[i].ID == "" {
			program[i].ID = uuid.New().String()
		}
		if err := validateRecord(program[i]); err != nil {
			return nil, err
		}
	}

	if err := store.SetProgram(ctx, eventID, program); err != nil {
		return nil, fmt.Errorf("failed to save program: %w", err)
	}

	logger.Info("Program saved",
		zap.String("event_id", eventID),
		zap.Int("items", len(program)),
		zap.Int("total_minutes", program.TotalDuration()))
	return program, nil
}

// EditProgram loads a concert's program, applies edit and saves the result
func EditProgram(ctx context.Context, store ProgramStore, logger *zap.Logger, eventID string, edit func(model.Program) model.Program) (model.Program, error) {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if event.Type != model.EventConcert {
		return nil, ErrNotConcert
	}
	return SaveProgram(ctx, store, logger, eventID, edit(model.Program(event.Program)))
}

// ProgramSchedule computes the running order's start times from the concert start
func ProgramSchedule(ctx context.Context, store ProgramStore, eventID string) ([]model.ScheduledItem, error) {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if event.Type != model.EventConcert {
		return nil, ErrNotConcert
	}
	return model.Program(event.Program).Schedule(event.StartDate), nil
}
