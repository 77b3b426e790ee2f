package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

type healthStatus struct {
	Status string `mapstructure:"status"`
	OK     bool   `mapstructure:"ok"`
}

func (c *Client) health(ctx context.Context) error {
	var raw map[string]any
	if err := c.getJSON(ctx, OpHealth, c.url(healthPath), &raw); err != nil {
		return err
	}

	var status healthStatus
	if err := mapstructure.Decode(raw, &status); err != nil {
		return fmt.Errorf("%w: %v", ErrUnhealthy, err)
	}

	if status.Status == "ok" || status.OK {
		return nil
	}

	pretty, _ := json.Marshal(raw)
	return fmt.Errorf("%w: %s", ErrUnhealthy, pretty)
}
