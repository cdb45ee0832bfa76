package temelio

import "fmt"

// Endpoint templates carry fmt verbs: the foundation id first, then (for
// the grantee update) the nonprofit id. Mirrors how the endpoints are
// provisioned in the environment.

func (c Config) CreateGranteeURL() string {
	return fmt.Sprintf(c.CreateGranteeEndpoint, c.FoundationID)
}

func (c Config) UpdateGranteeURL(nonprofitID string) string {
	return fmt.Sprintf(c.UpdateGranteeEndpoint, c.FoundationID, nonprofitID)
}

func (c Config) GetContactsURL() string {
	return fmt.Sprintf(c.GetContactsEndpoint, c.FoundationID)
}

func (c Config) GetGrantsURL() string {
	return fmt.Sprintf(c.GetGrantsEndpoint, c.FoundationID)
}

func (c Config) CreateGrantURL() string {
	return fmt.Sprintf(c.CreateGrantEndpoint, c.FoundationID)
}

func (c Config) UpdateGrantURL() string {
	return c.UpdateGrantEndpoint
}
