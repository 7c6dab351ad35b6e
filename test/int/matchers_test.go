package int

import (
	"fmt"
	"strings"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

type MatchBackendErrorMatcher struct {
	Error error
}

func (matcher *MatchBackendErrorMatcher) Match(actual interface{}) (success bool, err error) {
	res, ok := actual.(*apiResponse)
	if !ok {
		return false, fmt.Errorf("MatchBackendError matcher requires an *apiResponse, Got:\n%s", format.Object(actual, 1))
	}

	return res.Code != 0 && strings.Contains(res.Msg, matcher.Error.Error()), nil
}

func (matcher *MatchBackendErrorMatcher) FailureMessage(actual interface{}) (message string) {
	return format.Message(actual, "to be", matcher.Error.Error())
}

func (matcher *MatchBackendErrorMatcher) NegatedFailureMessage(actual interface{}) (message string) {
	return format.Message(actual, "not to be", matcher.Error.Error())
}

func MatchBackendError(error error) types.GomegaMatcher {
	return &MatchBackendErrorMatcher{
		Error: error,
	}
}
