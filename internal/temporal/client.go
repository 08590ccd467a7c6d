package temporal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.uber.org/zap"

	"github.com/clintrovert/taskfeatures/internal/activities"
	"github.com/clintrovert/taskfeatures/internal/features"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/store"
	"github.com/clintrovert/taskfeatures/internal/temporal/workflows"
)

// Client wraps Temporal client functionality
type Client struct {
	temporalClient client.Client
	logger         *zap.Logger
	taskQueue      string
	classify       bool
}

// NewClient creates a new Temporal client
func NewClient(address, namespace, taskQueue string, logger *zap.Logger) (*Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  address,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create temporal client: %w", err)
	}
	return NewClientFrom(c, taskQueue, logger), nil
}

// NewClientFrom wraps an existing Temporal client
func NewClientFrom(c client.Client, taskQueue string, logger *zap.Logger) *Client {
	return &Client{
		temporalClient: c,
		logger:         logger,
		taskQueue:      taskQueue,
	}
}

// WithClassification makes started extractions run the classification step
func (c *Client) WithClassification(enabled bool) *Client {
	c.classify = enabled
	return c
}

// StartExtraction starts a new extraction workflow and returns its id
func (c *Client) StartExtraction(ctx context.Context, orgs []string) (string, error) {
	if len(orgs) == 0 {
		return "", pipeline.ErrNoOrganizations
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:        "extraction-" + uuid.NewString(),
		TaskQueue: c.taskQueue,
	}
	input := workflows.ExtractionInput{
		Organizations: orgs,
		Classify:      c.classify,
	}

	we, err := c.temporalClient.ExecuteWorkflow(ctx, workflowOptions, workflows.ExtractFeaturesWorkflow, input)
	if err != nil {
		return "", fmt.Errorf("failed to start workflow: %w", err)
	}

	c.logger.Info("started workflow",
		zap.String("workflow_id", we.GetID()),
		zap.String("run_id", we.GetRunID()),
		zap.Strings("organizations", orgs),
	)
	return we.GetID(), nil
}

// ExtractionResult blocks until the workflow finishes and returns its result
func (c *Client) ExtractionResult(ctx context.Context, workflowID string) (*workflows.ExtractionResult, error) {
	var result *workflows.ExtractionResult
	if err := c.temporalClient.GetWorkflow(ctx, workflowID, "").Get(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to get workflow result: %w", translate(err))
	}
	return result, nil
}

// CancelExtraction cancels a running workflow
func (c *Client) CancelExtraction(ctx context.Context, workflowID string) error {
	if err := c.temporalClient.CancelWorkflow(ctx, workflowID, ""); err != nil {
		return fmt.Errorf("failed to cancel workflow: %w", err)
	}
	c.logger.Info("cancelled workflow", zap.String("workflow_id", workflowID))
	return nil
}

// Close closes the Temporal client
func (c *Client) Close() {
	c.temporalClient.Close()
}

// translate maps application errors raised by the activities back onto the
// pipeline sentinels
func translate(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case activities.ErrTypeMalformedTask:
		return fmt.Errorf("%w: %w", features.ErrMalformedTask, err)
	case activities.ErrTypeNoOrganizations:
		return fmt.Errorf("%w: %w", pipeline.ErrNoOrganizations, err)
	case activities.ErrTypeStoreUnavailable:
		return fmt.Errorf("%w: %w", store.ErrStoreUnavailable, err)
	default:
		return err
	}
}
