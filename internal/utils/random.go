package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"time"

	"github.com/integration-system/backend/internal/domain"
)

var lowerLetters = []rune("abcdefghijklmnopqrstuvwxyz")
var upperLetters = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
var digits = []rune("0123456789")
var symbols = []rune("!@#$%^&*")

func cryptoIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand 读取失败说明系统熵源不可用，此时继续运行没有意义
		panic(err)
	}
	return int(v.Int64())
}

// GenerateRandomPassword 生成强密码，保证大小写字母、数字、符号各至少出现一次
func GenerateRandomPassword(length int) string {
	if length < 4 {
		length = 4
	}

	classes := [][]rune{lowerLetters, upperLetters, digits, symbols}
	all := make([]rune, 0, 70)
	for _, c := range classes {
		all = append(all, c...)
	}

	password := make([]rune, length)
	for i := range password {
		if i < len(classes) {
			password[i] = classes[i][cryptoIntn(len(classes[i]))]
		} else {
			password[i] = all[cryptoIntn(len(all))]
		}
	}

	// Fisher-Yates 洗牌，避免固定位置出现固定类别的字符
	for i := len(password) - 1; i > 0; i-- {
		j := cryptoIntn(i + 1)
		password[i], password[j] = password[j], password[i]
	}

	return string(password)
}

var vietnameseSurnames = []string{"Nguyễn", "Trần", "Lê", "Phạm", "Hoàng", "Huỳnh", "Phan", "Vũ", "Võ", "Đặng"}
var vietnameseMiddleNames = []string{"Văn", "Thị", "Hữu", "Đức", "Minh", "Ngọc", "Thanh", "Quốc"}
var vietnameseGivenNames = []string{"An", "Bình", "Chi", "Dũng", "Giang", "Hà", "Hùng", "Lan", "Linh", "Nam", "Phúc", "Quân", "Trang", "Tuấn", "Yến"}

var commonSurnames = []string{"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴"}
var commonNameCharacters = []string{"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇", "明", "军", "磊", "洋"}

func GenerateRandomFullName() string {
	// 少量员工使用中文姓名，用来覆盖拼音转换的用户名生成逻辑
	if mrand.Intn(5) == 0 {
		name := commonSurnames[mrand.Intn(len(commonSurnames))]
		nameLength := mrand.Intn(2) + 1
		for i := 0; i < nameLength; i++ {
			name += commonNameCharacters[mrand.Intn(len(commonNameCharacters))]
		}
		return name
	}

	return fmt.Sprintf("%s %s %s",
		vietnameseSurnames[mrand.Intn(len(vietnameseSurnames))],
		vietnameseMiddleNames[mrand.Intn(len(vietnameseMiddleNames))],
		vietnameseGivenNames[mrand.Intn(len(vietnameseGivenNames))],
	)
}

func GenerateRandomPhone() string {
	phone := "09"
	for i := 0; i < 8; i++ {
		phone += string(digits[mrand.Intn(len(digits))])
	}
	return phone
}

// GenerateRandomEmployee 生成用于填充测试数据的员工，部门和职位从给定的 ID 中随机选择
func GenerateRandomEmployee(emailDomain string, departmentIDs, positionIDs []int64) *domain.Employee {
	now := time.Now()
	gender := mrand.Intn(2) == 0

	e := &domain.Employee{
		FullName:    GenerateRandomFullName(),
		DateOfBirth: now.AddDate(-(mrand.Intn(30) + 20), -mrand.Intn(12), -mrand.Intn(28)),
		Gender:      &gender,
		PhoneNumber: GenerateRandomPhone(),
		Email:       fmt.Sprintf("employee%d%03d@%s", now.UnixNano()%1_000_000, mrand.Intn(1000), emailDomain),
		HireDate:    now.AddDate(-mrand.Intn(5), -mrand.Intn(12), -mrand.Intn(28)),
		Status:      domain.EmployeeStatusWorking,
	}

	if len(departmentIDs) > 0 {
		id := departmentIDs[mrand.Intn(len(departmentIDs))]
		e.DepartmentID = &id
	}
	if len(positionIDs) > 0 {
		id := positionIDs[mrand.Intn(len(positionIDs))]
		e.PositionID = &id
	}

	return e
}

// GenerateRandomAttendance 生成某员工某月的考勤，工作日、缺勤、请假加起来不超过 26 天
func GenerateRandomAttendance(employeeID int64, month time.Time) *domain.AttendanceRecord {
	absent := mrand.Intn(6)
	leave := mrand.Intn(3)
	return &domain.AttendanceRecord{
		EmployeeID:      employeeID,
		AbsentDays:      absent,
		LeaveDays:       leave,
		WorkDays:        26 - absent - leave,
		AttendanceMonth: domain.MonthStart(month),
	}
}
