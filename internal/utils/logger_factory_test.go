package utils_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironclad-grc/ironclad/internal/utils"
)

const (
	loggerFactorySubtestNameTemplateConstant = "%d_%s"
	testCaseStructuredLoggerNameConstant     = "structured_logger_created"
	testCaseConsoleLoggerNameConstant        = "console_logger_created"
	testCaseUnknownLevelNameConstant         = "unknown_level_rejected"
	testCaseUnknownFormatNameConstant        = "unknown_format_rejected"
	testUnknownLogLevelConstant              = utils.LogLevel("verbose")
	testUnknownLogFormatConstant             = utils.LogFormat("plain")
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logLevel      utils.LogLevel
		logFormat     utils.LogFormat
		expectFailure bool
	}{
		{name: testCaseStructuredLoggerNameConstant, logLevel: utils.LogLevelInfo, logFormat: utils.LogFormatStructured},
		{name: testCaseConsoleLoggerNameConstant, logLevel: utils.LogLevelDebug, logFormat: utils.LogFormatConsole},
		{name: testCaseUnknownLevelNameConstant, logLevel: testUnknownLogLevelConstant, logFormat: utils.LogFormatStructured, expectFailure: true},
		{name: testCaseUnknownFormatNameConstant, logLevel: utils.LogLevelInfo, logFormat: testUnknownLogFormatConstant, expectFailure: true},
	}

	loggerFactory := utils.NewLoggerFactory()

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(loggerFactorySubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			createdLogger, creationError := loggerFactory.CreateLogger(testCase.logLevel, testCase.logFormat)
			if testCase.expectFailure {
				require.Error(subtestInstance, creationError)
				require.Nil(subtestInstance, createdLogger)
				return
			}
			require.NoError(subtestInstance, creationError)
			require.NotNil(subtestInstance, createdLogger)
		})
	}
}
