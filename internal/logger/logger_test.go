package logger_test

import (
	"testing"

	"github.com/webpack/webpack-sources/internal/logger"
	"github.com/webpack/webpack-sources/internal/test"
)

func TestDeferLogSortsMessages(t *testing.T) {
	log := logger.NewDeferLog()
	log.AddWarning(&logger.MsgLocation{File: "b.js", Line: 2, Column: 0}, "second")
	log.AddError(&logger.MsgLocation{File: "a.js", Line: 9, Column: 4}, "first")
	log.AddInfo("no location")

	test.AssertEqual(t, log.HasErrors(), true)
	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 3)
	test.AssertEqual(t, msgs[0].Text, "no location")
	test.AssertEqual(t, msgs[1].Text, "first")
	test.AssertEqual(t, msgs[2].Text, "second")
}

func TestDeferLogWithoutErrors(t *testing.T) {
	log := logger.NewDeferLog()
	log.AddWarning(nil, "careful")
	test.AssertEqual(t, log.HasErrors(), false)
}

func TestMsgString(t *testing.T) {
	plain := logger.TerminalInfo{}
	msg := logger.Msg{Kind: logger.Warning, Text: "bad mapping", Location: &logger.MsgLocation{File: "a.js.map", Line: 3, Column: 7}}
	test.AssertEqual(t, msg.String(plain), "a.js.map:3:7: warning: bad mapping\n")

	msg = logger.Msg{Kind: logger.Error, Text: "missing", Location: &logger.MsgLocation{File: "bundle.yaml"}}
	test.AssertEqual(t, msg.String(plain), "bundle.yaml: error: missing\n")

	msg = logger.Msg{Kind: logger.Info, Text: "done"}
	test.AssertEqual(t, msg.String(plain), "info: done\n")
}

func TestParseLogLevel(t *testing.T) {
	level, ok := logger.ParseLogLevel("warning")
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, level, logger.LevelWarning)

	_, ok = logger.ParseLogLevel("loud")
	test.AssertEqual(t, ok, false)
}
