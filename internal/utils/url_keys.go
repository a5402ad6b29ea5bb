package utils

const (
	// UsernameKey is the key for username used in routing parameters.
	UsernameKey = "username"

	// UidKey is the key for the encoded user id used in routing parameters.
	UidKey = "uid"

	// TokenKey is the key for the lifecycle token used in routing parameters.
	TokenKey = "token"

	// SettingKeyKey is the key for the setting key used in routing parameters.
	SettingKeyKey = "key"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"
)
