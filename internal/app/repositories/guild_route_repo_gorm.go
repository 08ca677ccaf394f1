package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type guildChannelRow struct {
	GuildID               string `gorm:"primaryKey;column:guild_id"`
	MembershipChannelID   string `gorm:"column:membership_channel_id;not null;default:''"`
	TransparencyChannelID string `gorm:"column:transparency_channel_id;not null;default:''"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (guildChannelRow) TableName() string { return "guild_channels" }

type gormGuildRouteRepo struct {
	db *gorm.DB
}

// NewGormGuildRouteRepo builds a route repository backed by the guild_channels table.
func NewGormGuildRouteRepo(db *gorm.DB) (GuildRouteRepository, error) {
	if err := db.AutoMigrate(&guildChannelRow{}); err != nil {
		return nil, fmt.Errorf("migrate guild_channels: %w", err)
	}
	return &gormGuildRouteRepo{db: db}, nil
}

func (r *gormGuildRouteRepo) Get(ctx context.Context, guild membership.GuildID) (membership.GuildRoute, error) {
	var row guildChannelRow
	err := r.db.WithContext(ctx).Where("guild_id = ?", string(guild)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return membership.GuildRoute{}, ErrRouteNotFound
	}
	if err != nil {
		return membership.GuildRoute{}, fmt.Errorf("load route %s: %w", guild, err)
	}
	return row.toDomain(), nil
}

func (r *gormGuildRouteRepo) List(ctx context.Context) ([]membership.GuildRoute, error) {
	var rows []guildChannelRow
	if err := r.db.WithContext(ctx).Order("guild_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	out := make([]membership.GuildRoute, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *gormGuildRouteRepo) Upsert(ctx context.Context, route membership.GuildRoute) error {
	route = normalizeRoute(route)
	if route.GuildID == "" {
		return ErrInvalidRoute
	}
	row := guildChannelRow{
		GuildID:               string(route.GuildID),
		MembershipChannelID:   route.MembershipChannelID,
		TransparencyChannelID: route.TransparencyChannelID,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"membership_channel_id", "transparency_channel_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert route %s: %w", route.GuildID, err)
	}
	return nil
}

func (row guildChannelRow) toDomain() membership.GuildRoute {
	return membership.GuildRoute{
		GuildID:               membership.GuildID(row.GuildID),
		MembershipChannelID:   row.MembershipChannelID,
		TransparencyChannelID: row.TransparencyChannelID,
	}
}
