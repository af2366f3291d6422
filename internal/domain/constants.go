package domain

// Transaction types. Values are part of the durable contract that seed
// scripts and admin exports rely on, so they stay lowercase.
const (
	TxTypeTip        = "tip"
	TxTypeReward     = "reward"
	TxTypeWithdrawal = "withdrawal"
)

// Transaction statuses. Tips and rewards are created completed; only
// withdrawals pass through pending.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusDenied    = "denied"
)

const (
	ReactionLike = "like"
	ReactionTip  = "tip"
)

const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
	ContentTypeVideo = "video"
)

// Realtime event types relayed over the websocket hub.
const (
	EventTipReceived = "tip-received"
	EventChatMessage = "chat-message"
	EventUserJoined  = "user-joined"
)
