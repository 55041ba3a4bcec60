package migration

import "testing"

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "headings",
			markdown: "# 제목\n## 부제목\n### 소제목",
			want:     "<h1>제목</h1><h2>부제목</h2><h3>소제목</h3>",
		},
		{
			name:     "checklist glyphs",
			markdown: "# 오늘 할 일\n- [x] 배포\n- [ ] 코드 리뷰",
			want:     "<h1>오늘 할 일</h1><ul><li>☑ 배포</li><li>☐ 코드 리뷰</li></ul>",
		},
		{
			name:     "dash and glyph bullets",
			markdown: "- 첫번째\n▪️두번째\n🔸세번째",
			want:     "<ul><li>첫번째</li><li>두번째</li><li>세번째</li></ul>",
		},
		{
			name:     "blank line closes list",
			markdown: "- 하나\n\n- 둘",
			want:     "<ul><li>하나</li></ul><ul><li>둘</li></ul>",
		},
		{
			name:     "code fence preserves raw lines",
			markdown: "```\nrm -rf <dir>\n```",
			want:     "<pre><code>rm -rf &lt;dir&gt;\n</code></pre>",
		},
		{
			name:     "unclosed fence closed at end",
			markdown: "```\nselect 1",
			want:     "<pre><code>select 1\n</code></pre>",
		},
		{
			name:     "horizontal rule",
			markdown: "위\n---\n아래",
			want:     "<p>위</p><hr /><p>아래</p>",
		},
		{
			name:     "backtick inline code",
			markdown: "명령은 `ls -al` 입니다",
			want:     "<p>명령은 <code>ls -al</code> 입니다</p>",
		},
		{
			name:     "won sign inline code",
			markdown: "₩config.yaml₩ 수정",
			want:     "<p><code>config.yaml</code> 수정</p>",
		},
		{
			name:     "image line",
			markdown: "![스크린샷](capture.png)",
			want:     `<p><img src="capture.png" alt="image" /></p>`,
		},
		{
			name:     "paragraph escapes markup",
			markdown: "<b>태그</b> & 기타",
			want:     "<p>&lt;b&gt;태그&lt;/b&gt; &amp; 기타</p>",
		},
		{
			name:     "crlf input",
			markdown: "# 제목\r\n- 항목\r\n",
			want:     "<h1>제목</h1><ul><li>항목</li></ul>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderMarkdown(tt.markdown); got != tt.want {
				t.Errorf("RenderMarkdown() = %q, want %q", got, tt.want)
			}
		})
	}
}
