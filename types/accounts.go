package types

type Account struct {
	Id          string
	DisplayName string
	Admin       bool
	CreationTs  int64
}
