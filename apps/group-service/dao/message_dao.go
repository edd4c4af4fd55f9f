package dao

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sportshub-social/apps/group-service/model"
)

// messageDAO 群消息数据访问实现，基于MongoDB
type messageDAO struct {
	db *mongo.Database
}

// NewMessageDAO 创建群消息DAO实例
func NewMessageDAO(db *mongo.Database) MessageDAO {
	return &messageDAO{db: db}
}

// SaveMessage 保存群消息
func (d *messageDAO) SaveMessage(ctx context.Context, message *model.GroupMessage) error {
	collection := d.db.Collection(model.MessageCollection)
	_, err := collection.InsertOne(ctx, message)
	return err
}

// GetMessages 查询群消息，按发送时间倒序
func (d *messageDAO) GetMessages(ctx context.Context, groupID int64, limit, offset int32) ([]*model.GroupMessage, error) {
	collection := d.db.Collection(model.MessageCollection)

	if limit < 1 {
		limit = model.DefaultPageSize
	}
	if limit > model.MaxPageSize {
		limit = model.MaxPageSize
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*model.GroupMessage
	for cursor.Next(ctx) {
		var msg model.GroupMessage
		if err := cursor.Decode(&msg); err != nil {
			continue
		}
		messages = append(messages, &msg)
	}

	return messages, cursor.Err()
}

// DeleteGroupMessages 删除群的全部消息，群解散时调用
func (d *messageDAO) DeleteGroupMessages(ctx context.Context, groupID int64) error {
	collection := d.db.Collection(model.MessageCollection)
	_, err := collection.DeleteMany(ctx, bson.M{"group_id": groupID})
	return err
}
