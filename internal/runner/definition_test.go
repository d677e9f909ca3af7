package runner

import (
	"strings"
	"testing"
)

const validYAML = `
tasks:
  - id: fetch-report
    type: api_to_storage
    api_to_storage:
      service: analytics
      version: v4
      endpoint: reports.batchGet
      params:
        viewId: "123"
      destination: s3://reports/daily.json
      overwrite: true
      paginate: true
      retries: 2
      publish_response: true
      response_key: report
  - id: report-to-slack
    type: sql_to_slack
    sql_to_slack:
      sql: SELECT id, name FROM widgets
      filename: report.json.zip
      channels: ["#data", "#alerts"]
      initial_comment: daily widgets
      title: Widgets
      on_empty: skip
`

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(validYAML))
	if err != nil {
		t.Fatalf("ParseDefinition() err=%v", err)
	}
	if len(def.Tasks) != 2 {
		t.Fatalf("tasks=%d", len(def.Tasks))
	}

	api := def.Tasks[0].APIToStorage
	if api == nil || api.Params["viewId"] != "123" || !api.Paginate || api.Retries != 2 {
		t.Fatalf("api def=%+v", api)
	}
	slack := def.Tasks[1].SQLToSlack
	if slack == nil || slack.Filename != "report.json.zip" || len(slack.Channels) != 2 {
		t.Fatalf("slack def=%+v", slack)
	}
}

func TestParseDefinition_Rejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", `tasks: []`, "no tasks"},
		{"no id", "tasks:\n  - type: api_to_storage", "has no id"},
		{
			"duplicate id",
			"tasks:\n  - id: a\n    type: api_to_storage\n    api_to_storage:\n      service: s\n      version: v\n      endpoint: e\n      destination: s3://b/k\n  - id: a\n    type: api_to_storage\n    api_to_storage:\n      service: s\n      version: v\n      endpoint: e\n      destination: s3://b/k",
			"duplicate task id",
		},
		{"unknown type", "tasks:\n  - id: a\n    type: ftp_to_pager", "unknown type"},
		{"missing block", "tasks:\n  - id: a\n    type: sql_to_slack", "missing sql_to_slack block"},
		{
			"bad nested config",
			"tasks:\n  - id: a\n    type: sql_to_slack\n    sql_to_slack:\n      sql: SELECT 1\n      filename: out.parquet",
			"unsupported file format",
		},
		{
			"bad empty policy",
			"tasks:\n  - id: a\n    type: sql_to_slack\n    sql_to_slack:\n      sql: SELECT 1\n      filename: out.csv\n      on_empty: ignore",
			"invalid empty-result policy",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v, want %q", err, tc.want)
			}
		})
	}
}
