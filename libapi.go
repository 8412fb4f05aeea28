package ackflow

import (
	consumerpkg "github.com/drblury/ackflow/internal/consumer"
	configpkg "github.com/drblury/ackflow/internal/consumer/config"
	errspkg "github.com/drblury/ackflow/internal/consumer/errors"
	idspkg "github.com/drblury/ackflow/internal/consumer/ids"
	jsoncodec "github.com/drblury/ackflow/internal/consumer/jsoncodec"
	loggingpkg "github.com/drblury/ackflow/internal/consumer/logging"
)

type (
	Config       = configpkg.Config
	Consumer     = consumerpkg.Consumer
	Dependencies = consumerpkg.Dependencies

	Delivery    = consumerpkg.Delivery
	RoutingInfo = consumerpkg.RoutingInfo

	// Outcome taxonomy produced by handlers.
	Outcome            = consumerpkg.Outcome
	Accepted           = consumerpkg.Accepted
	DeclinedNoRecovery = consumerpkg.DeclinedNoRecovery
	HandlerFailed      = consumerpkg.HandlerFailed
	ExtractionFailed   = consumerpkg.ExtractionFailed
	ResultSlot         = consumerpkg.ResultSlot

	// External collaborator contracts.
	Handler          = consumerpkg.Handler
	RecoveryStrategy = consumerpkg.RecoveryStrategy
	ErrorReporter    = consumerpkg.ErrorReporter
	ConnectionHandle = consumerpkg.ConnectionHandle

	// Delivery lifecycle hooks.
	DeliveryHooks   = consumerpkg.DeliveryHooks
	DeliveryContext = consumerpkg.DeliveryContext

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger
)

var (
	New            = consumerpkg.New
	ValidateConfig = configpkg.ValidateConfig

	NewResultSlot        = consumerpkg.NewResultSlot
	LoggingHooks         = consumerpkg.LoggingHooks
	LoggingErrorReporter = consumerpkg.LoggingErrorReporter

	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger

	CreateULID = idspkg.CreateULID

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal

	ErrConfigRequired  = errspkg.ErrConfigRequired
	ErrLoggerRequired  = errspkg.ErrLoggerRequired
	ErrHandlerRequired = errspkg.ErrHandlerRequired
	ErrQueueRequired   = errspkg.ErrQueueRequired
	ErrBrokerClosed    = errspkg.ErrBrokerClosed
)
