package utils

import (
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// Slug converts a display name to a pinyin-based identifier safe to
// drop into a log line.
func Slug(displayName string) string {
	if displayName == "" {
		return ""
	}
	slug := ""
	for _, py := range pinyin.LazyConvert(displayName, nil) {
		slug += py
	}
	return slug
}

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomOwner produces a cohort owner account with a random
// Chinese display name and a pinyin-derived username.
func GenerateRandomOwner(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RoleOwner,
	}

	return user, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomID(letterLength int, digitLength int) string {
	randomID := make([]rune, letterLength+digitLength)
	for i := range randomID {
		if i < letterLength {
			randomID[i] = letters[rand.Intn(len(letters))]
		} else {
			randomID[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(randomID)
}

// GenerateRandomCohort produces a cohort with a plausible geometry: a
// group count between 2 and 8, per-sex counts that divide evenly by
// it, a handful of days, and an immovable vector with a few groups
// carrying one frozen slot each (never enough to freeze a whole
// group).
func GenerateRandomCohort(ownerID int64) *domain.Cohort {
	groupCount := int32(rand.Intn(7) + 2)
	perGroupMale := int32(rand.Intn(4) + 1)
	perGroupFemale := int32(rand.Intn(4) + 1)
	dayCount := int32(rand.Intn(10) + 2)

	immM := make([]int32, groupCount)
	immF := make([]int32, groupCount)
	for g := int32(0); g < groupCount; g++ {
		if rand.Intn(2) == 0 && perGroupMale > 1 {
			immM[g] = 1
		}
		if rand.Intn(2) == 0 && perGroupFemale > 1 {
			immF[g] = 1
		}
	}

	return &domain.Cohort{
		Name:        "人群" + GenerateRandomID(3, 3),
		GroupCount:  groupCount,
		MaleCount:   perGroupMale * groupCount,
		FemaleCount: perGroupFemale * groupCount,
		DayCount:    dayCount,
		ImmovableM:  immM,
		ImmovableF:  immF,
		OwnerID:     ownerID,
	}
}
