package sina

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "sinacrawler/pkg/errors"
)

func TestParseContainerID(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID string
		wantOK bool
	}{
		{
			name:   "string container id",
			body:   `{"data":{"tabsInfo":{"tabs":[{"tab_type":"profile","containerid":"2302831669879400"},{"tab_type":"weibo","containerid":"1076031669879400"}]}}}`,
			wantID: "1076031669879400",
			wantOK: true,
		},
		{
			name:   "numeric container id",
			body:   `{"data":{"tabsInfo":{"tabs":[{"tab_type":"weibo","containerid":1076031669879400}]}}}`,
			wantID: "1076031669879400",
			wantOK: true,
		},
		{
			name:   "non numeric ids on other tabs",
			body:   `{"data":{"tabsInfo":{"tabs":[{"tab_type":"super","containerid":"231475_-_SUPER"},{"tab_type":"weibo","containerid":"107603"}]}}}`,
			wantID: "107603",
			wantOK: true,
		},
		{
			name:   "no timeline tab",
			body:   `{"data":{"tabsInfo":{"tabs":[{"tab_type":"album","containerid":"107803"}]}}}`,
			wantOK: false,
		},
		{
			name:   "empty object",
			body:   `{}`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok, err := ParseContainerID([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParseContainerIDMalformed(t *testing.T) {
	_, _, err := ParseContainerID([]byte("<html>blocked</html>"))
	assert.True(t, errs.IsType(err, errs.ErrorTypeParsing))
}

func TestParsePage(t *testing.T) {
	body := `{"data":{"cards":[
		{"mblog":{"user":{"id":1669879400},"text":"hi","comments_count":3,"reposts_count":"100万+","bid":"Nx1","created_at":"05-01","pics":[{"url":"a.jpg"},{}],"page_info":{"page_url":"v.mp4"},"retweeted_status":{"id":1}}},
		{"card_type":11}
	]}}`

	page, err := ParsePage([]byte(body))
	require.NoError(t, err)
	require.Len(t, page.Data.Cards, 2)

	m := page.Data.Cards[0].Mblog
	require.NotNil(t, m)
	assert.Equal(t, ID("1669879400"), m.User.ID)
	assert.Equal(t, "hi", *m.Text)
	assert.JSONEq(t, `3`, string(m.CommentsCount))
	assert.JSONEq(t, `"100万+"`, string(m.RepostsCount))
	assert.Nil(t, m.AttitudesCount)
	assert.Len(t, m.Pics, 2)
	assert.Nil(t, m.Pics[1].URL)
	assert.Equal(t, "v.mp4", *m.PageInfo.PageURL)
	assert.True(t, m.IsRepost())

	assert.Nil(t, page.Data.Cards[1].Mblog)
}

func TestParsePageMalformed(t *testing.T) {
	_, err := ParsePage([]byte(`{"data":`))
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeParsing))
}
