// Package main provides the entry point of simple-bulletin, a moderated bulletin board.
// Users register and post adverts, moderators activate accounts and publish adverts and
// visitors browse the published feed. The web interface is served with fiber, data is kept
// with gorm in sqlite, mysql or postgres.
package main
