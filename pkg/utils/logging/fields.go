package logging

// Field names shared by every log line
const (
	FieldService    = "service"
	FieldEnv        = "env"
	FieldOperation  = "operation"
	FieldCollection = "collection"
	FieldMemberID   = "member_id"
	FieldEventID    = "event_id"
	FieldCostumeID  = "costume_id"
	FieldUID        = "uid"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatus     = "status"
	FieldDuration   = "duration"
)
