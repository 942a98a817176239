// Package testutil provides builders and fake collaborators shared by the
// engine test suites.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowd-sh/flowd/pkg/protocol"
)

// SentEmail is one captured EmailSender.Send call.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// FakeEmailSender records sent emails and optionally fails.
type FakeEmailSender struct {
	mu   sync.Mutex
	Sent []SentEmail
	Err  error
}

func (f *FakeEmailSender) Send(_ context.Context, to, subject, body string) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Sent = append(f.Sent, SentEmail{To: to, Subject: subject, Body: body})

	return nil
}

// FakeTaskStore records created tasks and hands out sequential ids.
type FakeTaskStore struct {
	mu      sync.Mutex
	Created []protocol.TaskInput
	Err     error
}

func (f *FakeTaskStore) CreateTask(_ context.Context, _ string, task protocol.TaskInput) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Created = append(f.Created, task)

	return fmt.Sprintf("task-%d", len(f.Created)), nil
}

// RecordUpdate is one captured RecordStore.UpdateRecord call.
type RecordUpdate struct {
	TenantID string
	Table    string
	RecordID string
	Fields   map[string]any
}

// FakeRecordStore records updates and optionally fails.
type FakeRecordStore struct {
	mu      sync.Mutex
	Updates []RecordUpdate
	Err     error
}

func (f *FakeRecordStore) UpdateRecord(_ context.Context, tenantID, table, recordID string, fields map[string]any) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Updates = append(f.Updates, RecordUpdate{TenantID: tenantID, Table: table, RecordID: recordID, Fields: fields})

	return nil
}

// WebhookCall is one captured WebhookClient.Post call.
type WebhookCall struct {
	URL     string
	Body    map[string]any
	Headers map[string]string
}

// FakeWebhookClient records calls and answers with a canned response.
type FakeWebhookClient struct {
	mu       sync.Mutex
	Calls    []WebhookCall
	Response *protocol.WebhookResponse
	Err      error
}

func (f *FakeWebhookClient) Post(_ context.Context, url string, body map[string]any, headers map[string]string) (*protocol.WebhookResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, WebhookCall{URL: url, Body: body, Headers: headers})

	if f.Response != nil {
		return f.Response, nil
	}

	return &protocol.WebhookResponse{StatusCode: 200, Body: map[string]any{"ok": true}}, nil
}

// FakeAIProvider answers every completion with a canned string.
type FakeAIProvider struct {
	mu       sync.Mutex
	Requests []protocol.CompletionRequest
	Reply    string
	Err      error
}

func (f *FakeAIProvider) Complete(_ context.Context, req protocol.CompletionRequest) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)

	return f.Reply, nil
}

// NewCollaborators wires a full fake bundle for tests.
func NewCollaborators() (*protocol.Collaborators, *FakeEmailSender, *FakeTaskStore, *FakeRecordStore, *FakeWebhookClient, *FakeAIProvider) {
	email := &FakeEmailSender{}
	tasks := &FakeTaskStore{}
	records := &FakeRecordStore{}
	webhooks := &FakeWebhookClient{}
	ai := &FakeAIProvider{Reply: "ok"}

	bundle := &protocol.Collaborators{
		Email:    email,
		Tasks:    tasks,
		Records:  records,
		Webhooks: webhooks,
		AI:       ai,
	}

	return bundle, email, tasks, records, webhooks, ai
}
