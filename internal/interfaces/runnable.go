package interfaces

import "context"

// Runnable is a long-living component driven by the application context
type Runnable interface {
	Run(ctx context.Context) error
}
