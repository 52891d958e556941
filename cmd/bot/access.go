package main

import (
	"sync/atomic"

	"github.com/Proton-105/lovemenu-bot/pkg/config"
)

// access serves admin and couple lookups from the latest loaded config, so
// edits to bot.admin_ids and bot.couples apply without a restart.
type access struct {
	cfg atomic.Pointer[config.Config]
}

func newAccess(cfg *config.Config) *access {
	a := &access{}
	a.Store(cfg)
	return a
}

func (a *access) Store(cfg *config.Config) {
	if cfg != nil {
		a.cfg.Store(cfg)
	}
}

func (a *access) IsAdmin(userID int64) bool {
	return a.cfg.Load().IsAdmin(userID)
}

func (a *access) Admins() []int64 {
	return a.cfg.Load().Admins()
}

func (a *access) PartnerOf(userID int64) (int64, bool) {
	return a.cfg.Load().PartnerOf(userID)
}
