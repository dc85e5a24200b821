package assistant

import (
	"context"
	"net/http"

	"mindgraph/application/ports"
	"mindgraph/domain/entities"
)

type connectionsResponse struct {
	Connections []entities.ConnectionRecord `json:"connections"`
}

// ListNoteConnections fetches the persisted connections for a note
func (c *Client) ListNoteConnections(ctx context.Context, noteID string) ([]entities.ConnectionRecord, error) {
	var resp connectionsResponse
	if err := c.getJSON(ctx, "/api/notes/"+noteID+"/connections", &resp); err != nil {
		return nil, err
	}
	return resp.Connections, nil
}

// CreateConnection persists one connection for a note. The backend
// answers 409 when the edge already exists; execute maps that to a
// conflict error, which callers treat as a successful no-op. This
// service never deletes a persisted connection.
func (c *Client) CreateConnection(ctx context.Context, noteID string, req ports.CreateConnectionRequest) error {
	_, err := c.execute(ctx, http.MethodPost, "/api/notes/"+noteID+"/connections", req)
	return err
}
