package community

// SupportTitleTier 是一档支持者称号及其积分门槛。
type SupportTitleTier struct {
	Threshold int    `json:"threshold"`
	Title     string `json:"title"`
}

// 按门槛升序排列。
var supportTitles = []SupportTitleTier{
	{Threshold: 0, Title: "New Supporter"},
	{Threshold: 10, Title: "Empathy Builder"},
	{Threshold: 25, Title: "Quiet Supporter"},
	{Threshold: 50, Title: "Wisdom Sharer"},
	{Threshold: 100, Title: "Compassion Champion"},
	{Threshold: 200, Title: "Sisterhood Pillar"},
}

// SupportTitles 返回称号表的副本。
func SupportTitles() []SupportTitleTier {
	return append([]SupportTitleTier(nil), supportTitles...)
}

// SupportTitle 返回积分所能达到的最高称号，负数积分按 0 处理。
func SupportTitle(points int) string {
	title := supportTitles[0].Title
	for _, tier := range supportTitles {
		if points < tier.Threshold {
			break
		}
		title = tier.Title
	}
	return title
}

// NextSupportTitle 返回下一档称号及还差的积分；已达最高档时 ok 为 false。
func NextSupportTitle(points int) (title string, remaining int, ok bool) {
	for _, tier := range supportTitles {
		if points < tier.Threshold {
			return tier.Title, tier.Threshold - points, true
		}
	}
	return "", 0, false
}
