package notification

const ServiceName = "taskdeck.v1.PushNotificationService"

const (
	GetVapidPublicKeyProcedure          = "/" + ServiceName + "/GetVapidPublicKey"
	RegisterPushSubscriptionProcedure   = "/" + ServiceName + "/RegisterPushSubscription"
	UnregisterPushSubscriptionProcedure = "/" + ServiceName + "/UnregisterPushSubscription"
	SendTestNotificationProcedure       = "/" + ServiceName + "/SendTestNotification"
)

type GetVapidPublicKeyRequest struct{}

type GetVapidPublicKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

type RegisterPushSubscriptionRequest struct {
	Endpoint  string `json:"endpoint"`
	P256dhKey string `json:"p256dhKey"`
	AuthKey   string `json:"authKey"`
}

type RegisterPushSubscriptionResponse struct{}

type UnregisterPushSubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
}

type UnregisterPushSubscriptionResponse struct{}

type SendTestNotificationRequest struct{}

type SendTestNotificationResponse struct {
	Sent int `json:"sent"`
}
