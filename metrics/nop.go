package metrics

// NopMetrics is a no-op implementation of the Metrics interface.
// Use this when metrics collection is disabled.
type NopMetrics struct{}

// NewNopMetrics creates a new NopMetrics instance.
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// Pool metrics (no-op)

func (m *NopMetrics) SetPoolSize(size int) {}
func (m *NopMetrics) SetTips(count int)    {}

// Lifecycle metrics (no-op)

func (m *NopMetrics) IncBlocksPut(count int)          {}
func (m *NopMetrics) IncBlocksPersisted(store string) {}
func (m *NopMetrics) IncBlockRefs()                   {}
func (m *NopMetrics) IncBlockUnrefs()                 {}

// Store metrics (no-op)

func (m *NopMetrics) SetStoresRegistered(count int) {}

// Traversal metrics (no-op)

func (m *NopMetrics) IncBlocksYielded(traversal string) {}
