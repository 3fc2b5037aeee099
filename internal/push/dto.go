// AngelaMos | 2026
// dto.go

package push

type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required,max=255"`
	Auth   string `json:"auth"   validate:"required,max=255"`
}

type SubscribeRequest struct {
	Endpoint string           `json:"endpoint" validate:"required,url,max=2048"`
	Keys     SubscriptionKeys `json:"keys"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,max=2048"`
}

type VAPIDKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
