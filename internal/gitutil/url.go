package gitutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// prURLPattern accepts the canonical PR page URL, with or without a scheme.
var prURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)$`)

// ParsePullRequestURL extracts owner, repository, and PR number from a GitHub
// pull request URL such as https://github.com/owner/repo/pull/42. A trailing
// slash is tolerated; anything after the number is not.
func ParsePullRequestURL(url string) (owner, repo string, prNumber int, err error) {
	parts := prURLPattern.FindStringSubmatch(strings.TrimSuffix(url, "/"))
	if parts == nil {
		return "", "", 0, fmt.Errorf("not a pull request URL: %s", url)
	}
	prNumber, err = strconv.Atoi(parts[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid pull request number %q: %w", parts[3], err)
	}
	return parts[1], parts[2], prNumber, nil
}
