package services

import (
	"context"

	"mindgraph/application/ports"
	"mindgraph/domain/entities"
)

type fakeSource struct {
	notes     []entities.Note
	episodes  []entities.Episode
	documents []entities.Document

	notesErr     error
	episodesErr  error
	documentsErr error
}

func (f *fakeSource) ListNotes(ctx context.Context) ([]entities.Note, error) {
	if f.notesErr != nil {
		return nil, f.notesErr
	}
	return f.notes, nil
}

func (f *fakeSource) ListEpisodes(ctx context.Context) ([]entities.Episode, error) {
	if f.episodesErr != nil {
		return nil, f.episodesErr
	}
	return f.episodes, nil
}

func (f *fakeSource) ListDocuments(ctx context.Context) ([]entities.Document, error) {
	if f.documentsErr != nil {
		return nil, f.documentsErr
	}
	return f.documents, nil
}

type createdConnection struct {
	noteID string
	req    ports.CreateConnectionRequest
}

type fakeConnectionStore struct {
	existing []entities.ConnectionRecord
	listErr  error

	// createErr, when set, decides the outcome per request
	createErr func(noteID string, req ports.CreateConnectionRequest) error

	created []createdConnection
}

func (f *fakeConnectionStore) ListNoteConnections(ctx context.Context, noteID string) ([]entities.ConnectionRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.existing, nil
}

func (f *fakeConnectionStore) CreateConnection(ctx context.Context, noteID string, req ports.CreateConnectionRequest) error {
	if f.createErr != nil {
		if err := f.createErr(noteID, req); err != nil {
			return err
		}
	}
	f.created = append(f.created, createdConnection{noteID: noteID, req: req})
	return nil
}
