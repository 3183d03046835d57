package main

import (
	"fmt"
	"os"

	"treasury-node/lib/logger"
	"treasury-node/modules/aggregate"
	"treasury-node/modules/announcer"
	"treasury-node/modules/api"
	"treasury-node/modules/db"
	treasury_db "treasury-node/modules/db/treasury"
	"treasury-node/modules/db/treasury/governance"
	"treasury-node/modules/db/treasury/members"
	"treasury-node/modules/db/treasury/records"
	"treasury-node/modules/events"
	"treasury-node/modules/treasury"
	"treasury-node/modules/treasury/effects"
)

func main() {
	dbConf := db.NewDbConfig()

	if mongoUrl := os.Getenv("MONGO_URL"); mongoUrl != "" {
		dbConf.Update(func(dc *db.DbConfig) {
			dc.DbURI = mongoUrl
		})
	}
	dbi := db.New(dbConf)
	treasuryDb := treasury_db.New(dbi, "treasury")
	membersDb := members.New(treasuryDb)
	actionsDb := records.NewActions(treasuryDb)
	proposalsDb := records.NewProposals(treasuryDb)
	governanceDb := governance.New(treasuryDb)

	bus := events.New()

	dispatcherConf := effects.NewDispatcherConfig()
	genesisConf := treasury.NewGenesisConfig()
	apiConf := api.NewApiConfig()
	announcerConf := announcer.NewAnnouncerConfig()

	// dispatcher config must be loaded before the dispatcher reads it
	if err := dispatcherConf.Init(); err != nil {
		fmt.Println("error is", err)
		os.Exit(1)
	}
	dispatcher := effects.NewHttpDispatcher(
		dispatcherConf.Get().WebhookUrl,
		logger.PrefixedLogger{Prefix: "dispatcher"},
	)

	ts := treasury.New(
		actionsDb,
		proposalsDb,
		membersDb,
		governanceDb,
		dispatcher,
		bus,
		genesisConf,
		logger.PrefixedLogger{Prefix: "treasury"},
	)

	apiServer := api.New(ts, apiConf)
	announcerManager := announcer.New(
		ts,
		announcerConf,
		logger.PrefixedLogger{Prefix: "announcer"},
	)

	plugins := make([]aggregate.Plugin, 0)

	plugins = append(plugins,
		dbConf,
		genesisConf,
		apiConf,
		announcerConf,
		dbi,
		treasuryDb,
		membersDb,
		actionsDb,
		proposalsDb,
		governanceDb,
		bus,
		ts,
		apiServer,
		announcerManager,
	)

	a := aggregate.New(
		plugins,
	)

	err := a.Run()
	if err != nil {
		fmt.Println("error is", err)
		os.Exit(1)
	}
}
