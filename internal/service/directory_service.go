package service

import (
	"strings"

	"askher-go/internal/model"
)

// DirectoryService 提供危机热线与精选资源的只读目录。
type DirectoryService interface {
	Hotlines(category string) []model.Hotline
	Resources(category, tag string) []model.Resource
}

type directoryService struct {
	hotlines  []model.Hotline
	resources []model.Resource
}

// NewDirectoryService 使用内置目录创建 DirectoryService。
func NewDirectoryService() DirectoryService {
	return &directoryService{hotlines: defaultHotlines, resources: defaultResources}
}

// Hotlines 返回包含 category 的热线；category 为空时返回全部。
func (s *directoryService) Hotlines(category string) []model.Hotline {
	category = strings.ToLower(strings.TrimSpace(category))
	out := make([]model.Hotline, 0, len(s.hotlines))
	for _, h := range s.hotlines {
		if category == "" || contains(h.Categories, category) {
			out = append(out, h)
		}
	}
	return out
}

// Resources 按分类和标签过滤，空参数不参与过滤。
func (s *directoryService) Resources(category, tag string) []model.Resource {
	category = strings.ToLower(strings.TrimSpace(category))
	tag = strings.ToLower(strings.TrimSpace(tag))
	out := make([]model.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		if category != "" && r.Category != category {
			continue
		}
		if tag != "" && !contains(r.Tags, tag) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

var defaultHotlines = []model.Hotline{
	{
		ID:          "1",
		Name:        "National Suicide Prevention Lifeline",
		Phone:       "988",
		Description: "Provides 24/7, free and confidential support for people in distress, prevention and crisis resources for you or your loved ones.",
		Hours:       "24/7",
		Website:     "https://988lifeline.org/",
		Categories:  []string{"mental-health", "crisis"},
	},
	{
		ID:          "2",
		Name:        "Crisis Text Line",
		Phone:       "Text HOME to 741741",
		Description: "Free, 24/7 support for those in crisis. Text with a trained Crisis Counselor for support with anxiety, depression, suicide, and more.",
		Hours:       "24/7",
		Website:     "https://www.crisistextline.org/",
		Categories:  []string{"mental-health", "crisis", "text-based"},
	},
	{
		ID:          "3",
		Name:        "National Domestic Violence Hotline",
		Phone:       "1-800-799-7233",
		Description: "Advocates are available 24/7 to talk confidentially with anyone experiencing domestic violence, seeking resources or information, or questioning unhealthy aspects of their relationship.",
		Hours:       "24/7",
		Website:     "https://www.thehotline.org/",
		Categories:  []string{"domestic-violence", "crisis"},
	},
	{
		ID:          "4",
		Name:        "RAINN (Sexual Assault Hotline)",
		Phone:       "1-800-656-HOPE (4673)",
		Description: "Connect with a trained staff member from a sexual assault service provider in your area. Confidential support and resources.",
		Hours:       "24/7",
		Website:     "https://www.rainn.org/",
		Categories:  []string{"sexual-assault", "crisis"},
	},
	{
		ID:          "5",
		Name:        "National Eating Disorders Association Helpline",
		Phone:       "1-800-931-2237",
		Description: "Provides support, resources, and treatment options for yourself or a loved one experiencing eating disorder issues.",
		Hours:       "Monday-Thursday 11am-9pm ET, Friday 11am-5pm ET",
		Website:     "https://www.nationaleatingdisorders.org/",
		Categories:  []string{"eating-disorders", "mental-health"},
	},
	{
		ID:          "6",
		Name:        "Postpartum Support International",
		Phone:       "1-800-944-4773",
		Description: "Provides support, resources, and information for women and families experiencing postpartum mental health issues.",
		Hours:       "Available in English & Spanish",
		Website:     "https://www.postpartum.net/",
		Categories:  []string{"postpartum", "parenting", "mental-health"},
	},
	{
		ID:          "7",
		Name:        "National Alliance on Mental Illness (NAMI) HelpLine",
		Phone:       "1-800-950-NAMI (6264)",
		Description: "Provides information, resource referrals and support to people living with a mental health condition, family members and caregivers, mental health providers and the public.",
		Hours:       "Monday-Friday 10am-10pm ET",
		Website:     "https://www.nami.org/",
		Categories:  []string{"mental-health", "resources"},
	},
	{
		ID:          "8",
		Name:        "Trevor Project (LGBTQ+ Youth)",
		Phone:       "1-866-488-7386",
		Description: "Crisis intervention and suicide prevention services to lesbian, gay, bisexual, transgender, queer & questioning young people under 25.",
		Hours:       "24/7",
		Website:     "https://www.thetrevorproject.org/",
		Categories:  []string{"lgbtq", "youth", "crisis"},
	},
}

var defaultResources = []model.Resource{
	{ID: "1", Title: "Therapy for Black Girls", Description: "An online space dedicated to encouraging the mental wellness of Black women and girls.", URL: "https://therapyforblackgirls.com/", Category: "mental-health", Tags: []string{"therapy", "poc", "women"}},
	{ID: "2", Title: "National Women's Health Network", Description: "Improving the health of all women by developing and promoting a critical analysis of health issues.", URL: "https://nwhn.org/", Category: "physical-health", Tags: []string{"women", "health", "advocacy"}},
	{ID: "3", Title: "Lean In", Description: "Offering women the ongoing inspiration and support to help them achieve their goals.", URL: "https://leanin.org/", Category: "career", Tags: []string{"professional", "leadership", "mentorship"}},
	{ID: "4", Title: "Women Who Code", Description: "Empowering women to excel in technology careers.", URL: "https://www.womenwhocode.com/", Category: "career", Tags: []string{"tech", "coding", "networking"}},
	{ID: "5", Title: "The Loveland Foundation", Description: "Bringing opportunity and healing to communities of color, especially to Black women and girls.", URL: "https://thelovelandfoundation.org/", Category: "mental-health", Tags: []string{"therapy", "poc", "healing"}},
	{ID: "6", Title: "RAINN", Description: "Nation's largest anti-sexual violence organization.", URL: "https://www.rainn.org/", Category: "safety", Tags: []string{"trauma", "support", "crisis"}},
	{ID: "7", Title: "Women's Health", Description: "Comprehensive information on women's wellness, fitness, and nutrition.", URL: "https://www.womenshealthmag.com/", Category: "physical-health", Tags: []string{"wellness", "fitness", "nutrition"}},
	{ID: "8", Title: "Power to Decide", Description: "Ensuring all young people have the power to decide if, when, and under what circumstances to get pregnant and have a child.", URL: "https://powertodecide.org/", Category: "reproductive-health", Tags: []string{"education", "contraception", "planning"}},
}
