// Package git はデプロイ中のリポジトリからリビジョン情報を読み取る。
// ヘルスチェックのビルド識別子として使う。
package git

import (
	"github.com/go-git/go-git/v5"
)

// HeadSHA はリポジトリのHEADコミットハッシュを返す。
// Gitリポジトリ外で動いている場合は "unknown" を返す。
func HeadSHA(repoPath string) string {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "unknown"
	}

	head, err := repo.Head()
	if err != nil {
		return "unknown"
	}

	return head.Hash().String()
}
