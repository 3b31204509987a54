package models

// InsertResult mirrors the driver's insert acknowledgement.
type InsertResult struct {
	Acknowledged bool        `json:"acknowledged"`
	InsertedID   interface{} `json:"insertedId"`
}

// UpdateResult mirrors the driver's update acknowledgement.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult mirrors the driver's delete acknowledgement.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Stats holds per-collection document counts.
type Stats struct {
	Products   int64 `json:"products"`
	Properties int64 `json:"properties"`
	Blogs      int64 `json:"blogs"`
	Reviews    int64 `json:"reviews"`
	Users      int64 `json:"users"`
}
