package api

import (
	"context"
	"net/http"

	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/model"
)

// AuthResponse is returned by the login, register and refresh endpoints.
type AuthResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	User    *model.UserProfile `json:"user,omitempty"`
	Token   string             `json:"token,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type markReadRequest struct {
	ID model.ServerID `json:"id"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type csrfResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	return call[AuthResponse](ctx, c, http.MethodPost, config.EndpointLogin, loginRequest{Email: email, Password: password})
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, email, password, name string) (AuthResponse, error) {
	return call[AuthResponse](ctx, c, http.MethodPost, config.EndpointRegister, registerRequest{Email: email, Password: password, Name: name})
}

// Refresh re-validates the current bearer token.
func (c *Client) Refresh(ctx context.Context) (AuthResponse, error) {
	return call[AuthResponse](ctx, c, http.MethodPost, config.EndpointRefresh, nil)
}

// LoadGuests fetches every RSVP.
func (c *Client) LoadGuests(ctx context.Context) ([]model.Guest, error) {
	list, err := call[model.GuestList](ctx, c, http.MethodGet, config.EndpointLoadRSVPs, nil)
	return list.Guests, err
}

// AddGuest creates a guest and returns the stored copy.
func (c *Client) AddGuest(ctx context.Context, g model.Guest) (model.Guest, error) {
	return call[model.Guest](ctx, c, http.MethodPost, config.EndpointGuestAdd, g)
}

// UpdateGuest replaces a guest and returns the stored copy.
func (c *Client) UpdateGuest(ctx context.Context, g model.Guest) (model.Guest, error) {
	return call[model.Guest](ctx, c, http.MethodPost, config.EndpointGuestUpdate, g)
}

// LoadBudget fetches the budget.
func (c *Client) LoadBudget(ctx context.Context) (model.BudgetData, error) {
	return call[model.BudgetData](ctx, c, http.MethodGet, config.EndpointBudgetLoad, nil)
}

// SaveBudget overwrites the stored budget.
func (c *Client) SaveBudget(ctx context.Context, b model.BudgetData) error {
	return c.save(ctx, config.EndpointBudgetSave, b)
}

// LoadGifts fetches the gift log.
func (c *Client) LoadGifts(ctx context.Context) (model.GiftData, error) {
	return call[model.GiftData](ctx, c, http.MethodGet, config.EndpointGiftsLoad, nil)
}

// SaveGifts overwrites the stored gift log.
func (c *Client) SaveGifts(ctx context.Context, g model.GiftData) error {
	return c.save(ctx, config.EndpointGiftsSave, g)
}

// LoadTasks fetches the task list.
func (c *Client) LoadTasks(ctx context.Context) (model.TaskData, error) {
	return call[model.TaskData](ctx, c, http.MethodGet, config.EndpointTasksLoad, nil)
}

// SaveTasks overwrites the stored task list.
func (c *Client) SaveTasks(ctx context.Context, t model.TaskData) error {
	return c.save(ctx, config.EndpointTasksSave, t)
}

// LoadMessages fetches the inbox.
func (c *Client) LoadMessages(ctx context.Context) ([]model.Message, error) {
	list, err := call[model.MessageList](ctx, c, http.MethodGet, config.EndpointMessagesLoad, nil)
	return list.Messages, err
}

// MarkMessageRead flags one inbox message as read.
func (c *Client) MarkMessageRead(ctx context.Context, id model.ServerID) error {
	return c.save(ctx, config.EndpointMessageRead, markReadRequest{ID: id})
}

func (c *Client) save(ctx context.Context, endpoint string, body any) error {
	resp, err := call[saveResponse](ctx, c, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &RejectedError{Endpoint: endpoint, Message: resp.Message}
	}
	return nil
}
