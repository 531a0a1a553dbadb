package model

// IngestRecord is the persisted form of one accepted ingest request. Records are
// written once by the ingest handler and only ever read in bulk by the aggregator.
type IngestRecord struct {
	Id        string                 `json:"id" bson:"id"`               // Generated ksuid, unique per record
	Timestamp int64                  `json:"timestamp" bson:"timestamp"` // Seconds since epoch, the primary ordering key
	UserId    string                 `json:"userId" bson:"userId"`       // Subject supplied in the request body
	EventType string                 `json:"eventType" bson:"eventType"` // Defaults to "unknown" when absent
	Data      map[string]interface{} `json:"data" bson:"data"`           // Opaque request payload
	CreatedAt string                 `json:"createdAt" bson:"createdAt"` // ISO-8601 creation time

	// AuthenticatedUser and UserEmail are copied from the verified token context.
	// They may legitimately differ from UserId (a service acting on behalf of a user).
	AuthenticatedUser string `json:"authenticatedUser" bson:"authenticatedUser"`
	UserEmail         string `json:"userEmail,omitempty" bson:"userEmail,omitempty"`
}
