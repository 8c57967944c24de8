package service

import (
	"fmt"
	"strings"
	"time"

	"pool_watch/internal/domain"
	"pool_watch/internal/infra"
)

// User-facing notices. All outbound text is plain Korean, one message per
// notification event.
const (
	msgCheckFailed     = "❌ 풀 상태 확인 중 오류가 발생했습니다."
	msgCompareFailed   = "❌ 풀 비교 중 오류가 발생했습니다."
	msgHistoryFailed   = "❌ 풀 기록 조회 중 오류가 발생했습니다."
	msgNoHistory       = "📝 아직 기록된 풀 상태가 없습니다."
	msgSubscribed      = "✅ 풀 상태 모니터링을 시작합니다."
	msgAlreadyActive   = "❗ 이미 모니터링이 활성화되어 있습니다."
	msgUnsubscribed    = "⏹ 풀 상태 모니터링을 중지했습니다."
	msgNotActive       = "❌ 모니터링이 활성화되어 있지 않습니다."
	msgMonitorOff      = "📴 현재 모니터링이 비활성화 상태입니다."
	msgChooseAction    = "🔷 원하시는 작업을 선택해주세요:"
	msgInvalidInterval = "❌ 허용되지 않는 자동 비교 주기입니다."
	msgSettingsFailed  = "❌ 설정 저장 중 오류가 발생했습니다."
)

// statusMessage renders one block per pool.
func statusMessage(snapshots []domain.PoolSnapshot) string {
	blocks := make([]string, len(snapshots))
	for i, s := range snapshots {
		blocks[i] = poolBlock(s)
	}
	return strings.Join(blocks, "\n\n")
}

func poolBlock(s domain.PoolSnapshot) string {
	return fmt.Sprintf(
		"🏊‍♂️ %s\n📦 블록 높이: %s\n⚡ 해시레이트: %s\n👥 채굴자 수: %s\n🕒 %s",
		s.Name,
		infra.FormatNumber(s.Height),
		infra.FormatHashrate(s.Hashrate),
		infra.FormatNumber(uint64(s.Miners)),
		infra.FormatKSTUnix(s.LastBlockFound),
	)
}

// alertMessage is the divergence broadcast sent to every subscriber.
func alertMessage(snapshots []domain.PoolSnapshot) string {
	return "⚠️ 풀 간 블록 높이 차이가 감지되었습니다!\n\n" + statusMessage(snapshots)
}

// compareMessage renders the pairwise height/blocktime view.
func compareMessage(rep domain.CompareReport) string {
	verdict := "✅ 정상: 블록 높이 차이가 안정적입니다."
	if rep.Diverged {
		verdict = fmt.Sprintf("⚠️ 주의: 블록 높이 차이가 %d 이상입니다!", domain.BlockHeightThreshold)
	}

	return fmt.Sprintf(
		"📊 풀 높이 및 블록타임 비교\n\n"+
			"🏊‍♂️ %s\n높이: %s\n블록타임: %s\n\n"+
			"🏊‍♂️ %s\n높이: %s\n블록타임: %s\n\n"+
			"📈 높이 차이: %s 블록\n"+
			"🕒 블록타임 차이: %s 초\n%s",
		rep.Highest.Name, infra.FormatNumber(rep.Highest.Height), infra.FormatKSTUnix(rep.Highest.LastBlockFound),
		rep.Lowest.Name, infra.FormatNumber(rep.Lowest.Height), infra.FormatKSTUnix(rep.Lowest.LastBlockFound),
		infra.FormatNumber(rep.HeightDiff),
		infra.FormatNumber(uint64(rep.BlockTimeDiff)),
		verdict,
	)
}

// historyMessage renders the recent per-pool records, or the canonical
// empty-history notice.
func historyMessage(snapshots []domain.PoolSnapshot) string {
	if len(snapshots) == 0 {
		return msgNoHistory
	}

	var b strings.Builder
	b.WriteString("📜 최근 풀 상태 기록:\n")
	for _, s := range snapshots {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(
			"🏊‍♂️ %s\n📦 블록 높이: %s\n⚡ 해시레이트: %s\n👥 채굴자 수: %s\n🕒 %s\n",
			s.Name,
			infra.FormatNumber(s.Height),
			infra.FormatHashrate(s.Hashrate),
			infra.FormatNumber(uint64(s.Miners)),
			infra.FormatKST(s.CreatedAt),
		))
	}
	return b.String()
}

// monitorMessage reports the subscription's fixed parameters.
func monitorMessage(chatID int64, checkInterval time.Duration) string {
	return fmt.Sprintf(
		"📊 모니터링 상태\n\n"+
			"✅ 상태: 활성화\n"+
			"🔄 체크 주기: %d초\n"+
			"⚠️ 블록 차이 임계값: %d블록\n"+
			"👤 모니터링 채팅 ID: %d",
		int(checkInterval.Seconds()), domain.BlockHeightThreshold, chatID,
	)
}

// settingsMessage reports a chat's current auto-compare preference.
func settingsMessage(s domain.ChatSettings) string {
	state := "꺼짐"
	if s.AutoCompare {
		state = "켜짐"
	}
	return fmt.Sprintf(
		"⚙️ 자동 비교 설정\n\n"+
			"🔁 자동 비교: %s\n"+
			"⏱ 비교 주기: %s",
		state, intervalLabel(s.CompareInterval),
	)
}

func intervalSetMessage(ms int64) string {
	return fmt.Sprintf("⏱ 자동 비교 주기가 %s(으)로 설정되었습니다.", intervalLabel(ms))
}

// intervalLabel renders an enumerated period in Korean.
func intervalLabel(ms int64) string {
	switch {
	case ms >= 3_600_000:
		return fmt.Sprintf("%d시간", ms/3_600_000)
	case ms >= 60_000:
		return fmt.Sprintf("%d분", ms/60_000)
	default:
		return fmt.Sprintf("%d초", ms/1_000)
	}
}

// mainMenu is the button grid behind /menu.
func mainMenu() domain.Menu {
	return domain.Menu{
		{
			{Text: "📊 현재 풀 상태", Data: domain.ActionStatus},
			{Text: "📈 풀 높이 비교", Data: domain.ActionCompare},
		},
		{
			{Text: "📡 모니터링 시작", Data: domain.ActionStart},
			{Text: "⏹ 모니터링 중지", Data: domain.ActionStop},
		},
		{
			{Text: "📡 모니터링 상태", Data: domain.ActionMonitor},
			{Text: "📜 풀 상태 기록", Data: domain.ActionHistory},
		},
		{
			{Text: "⚙️ 자동 비교 설정", Data: domain.ActionSettings},
		},
	}
}

// settingsMenu is the button grid behind /settings: the toggle plus every
// allowed interval, three per row.
func settingsMenu(s domain.ChatSettings) domain.Menu {
	toggleText := "🔁 자동 비교 켜기"
	if s.AutoCompare {
		toggleText = "🔁 자동 비교 끄기"
	}

	menu := domain.Menu{{{Text: toggleText, Data: domain.ActionToggleCompare}}}

	var row []domain.MenuButton
	for _, ms := range domain.AllowedIntervals {
		text := intervalLabel(ms)
		if ms == s.CompareInterval {
			text = "• " + text
		}
		row = append(row, domain.MenuButton{
			Text: text,
			Data: fmt.Sprintf("%s:%d", domain.ActionCompareInterval, ms),
		})
		if len(row) == 3 {
			menu = append(menu, row)
			row = nil
		}
	}
	if len(row) > 0 {
		menu = append(menu, row)
	}
	return menu
}
