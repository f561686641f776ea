package domain

// TenantID is the opaque source identifier carried by a webhook entry
// (a page/account id).  It is the eligibility cache key and the registry
// lookup key.
type TenantID string

func (tid TenantID) String() string {
	return string(tid)
}

type AppID int

type Topic string

func (t Topic) String() string {
	return string(t)
}

// RoutingConfig is the current routing intent for a tenant.  It is read
// fresh from the registry on every dispatch.
type RoutingConfig struct {
	TenantID TenantID
	AppID    AppID
	Topic    Topic
	Enabled  bool
}

// TenantChannel is a tenant identity record in the registry.  A tenant is
// eligible when at least one channel record references its ref id.
type TenantChannel struct {
	ID      int
	RefID   TenantID
	Name    string
	RefType string
	Token   string
}

type Application struct {
	ID    int
	Name  string
	Token string
}
