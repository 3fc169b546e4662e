package community

import (
	"context"

	"askher-go/internal/model"
)

// SlotKey 是保存当前设备用户档案的持久化槽位名。
const SlotKey = "askher-user"

// ProfileSlot 是用户档案的持久化槽位：启动时读取一次，每次档案变化后写入。
type ProfileSlot interface {
	// Load 在槽位为空时返回 (nil, nil)。
	Load(ctx context.Context) (*model.User, error)
	Save(ctx context.Context, user model.User) error
}
