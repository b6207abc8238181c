package system

import "context"

// Service is a long-running component with an explicit lifecycle, such as
// the document extraction poller. The manager starts services in
// registration order and stops them in reverse.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
