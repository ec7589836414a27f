package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"
)

// actionEvent announces a mutating call the cloud has accepted. Accepted
// does not mean finished.
type actionEvent struct {
	Kind       string            `json:"kind"`
	ResourceID string            `json:"resource_id"`
	ProjectID  string            `json:"project_id,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	AcceptedAt time.Time         `json:"accepted_at"`
}

// eventPublisher sends action events to NATS. A nil publisher drops them.
type eventPublisher struct {
	nc *nats.Conn
}

func newEventPublisher(url string, logger openstack.Logger) (*eventPublisher, error) {
	if url == "" {
		return nil, nil
	}

	nc, err := nats.Connect(url,
		nats.Name("nimbus-cli"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(constants.NATSReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", map[string]interface{}{"error": err.Error()})
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", map[string]interface{}{"url": nc.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return &eventPublisher{nc: nc}, nil
}

func actionSubject(kind string) string {
	return constants.ActionSubjectPrefix + "." + kind
}

func (p *eventPublisher) publish(event actionEvent) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding action event: %w", err)
	}

	err = p.nc.Publish(actionSubject(event.Kind), payload)
	if err != nil {
		return fmt.Errorf("publishing action event: %w", err)
	}

	err = p.nc.FlushTimeout(constants.NATSFlushTimeout)
	if err != nil {
		return fmt.Errorf("flushing action event: %w", err)
	}

	return nil
}

func (p *eventPublisher) close() {
	if p == nil {
		return
	}

	_ = p.nc.Drain()
}

// accepted reports an accepted action and announces it when --nats-url is
// set. Publishing problems are only logged: the action already happened.
func (g *gateway) accepted(kind, resourceID string, details map[string]string) error {
	_, err := fmt.Fprintf(output, "Request accepted: %s %s\n", kind, resourceID)
	if err != nil {
		return err
	}

	publisher, err := newEventPublisher(viper.GetString("nats-url"), g.logger)
	if err != nil {
		g.logger.Warn("Action event not published", map[string]interface{}{"error": err.Error()})

		return nil
	}
	defer publisher.close()

	err = publisher.publish(actionEvent{
		Kind:       kind,
		ResourceID: resourceID,
		ProjectID:  g.session.ProjectID,
		Details:    details,
		AcceptedAt: time.Now().UTC(),
	})
	if err != nil {
		g.logger.Warn("Action event not published", map[string]interface{}{"error": err.Error()})
	}

	return nil
}
