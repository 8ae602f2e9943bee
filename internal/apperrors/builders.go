package apperrors

import "github.com/samber/oops"

// Messaging builds errors raised by internal/messaging (the Telegram-like
// Bot API client).
func Messaging(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In("messaging").Tags("transport")
}

// Queue builds errors raised by internal/queue's worker loop and state
// machine.
func Queue(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In("queue").Tags("publication-worker")
}

// Scheduler builds errors raised by internal/scheduler's slot calculation.
func Scheduler(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In("scheduler").Tags("slot-assignment")
}

// Validator builds errors raised by internal/contentvalidator.
func Validator(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In("content-validator").Tags("validation")
}

// Store builds errors raised by internal/store's repositories.
func Store(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In("store").Tags("infrastructure", "persistence")
}

// Clock builds errors raised by internal/clock's timezone resolution.
func Clock(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In("clock").Tags("timezone")
}

// Import builds errors raised by internal/csvimport.
func Import(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In("csv-import").Tags("ingest")
}

// Wrap attaches context fields to an existing error under the given
// domain/code pair.
func Wrap(in string, code string, err error, context map[string]interface{}) error {
	builder := oops.Code(code).In(in)
	for k, v := range context {
		builder = builder.With(k, v)
	}
	return builder.Wrap(err)
}
