// Package entity defines the domain models for the bazi feature.
package entity

import "fmt"

// Polarity は天干の陰陽です。
type Polarity int

const (
	Yang Polarity = iota
	Yin
)

func (p Polarity) String() string {
	if p == Yang {
		return "yang"
	}
	return "yin"
}

// Stem は十干（天干）を表します。値は 0〜9 の周期インデックスです。
type Stem int

const (
	StemJia Stem = iota
	StemYi
	StemBing
	StemDing
	StemWu
	StemJi
	StemGeng
	StemXin
	StemRen
	StemGui
)

// StemCount は天干の数です。
const StemCount = 10

var stemNames = [StemCount]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

// Index は 0 始まりの天干インデックスを返します。
func (s Stem) Index() int { return int(s) }

// Polarity は天干の陰陽を返します。偶数インデックス（甲丙戊庚壬）が陽です。
func (s Stem) Polarity() Polarity {
	if s%2 == 0 {
		return Yang
	}
	return Yin
}

func (s Stem) String() string {
	if s < 0 || int(s) >= StemCount {
		return fmt.Sprintf("Stem(%d)", int(s))
	}
	return stemNames[s]
}

// ParseStem は漢字一文字から天干を返します。
func ParseStem(name string) (Stem, bool) {
	for i, n := range stemNames {
		if n == name {
			return Stem(i), true
		}
	}
	return 0, false
}

// Branch は十二支（地支）を表します。値は 0〜11 の周期インデックスです。
type Branch int

const (
	BranchZi Branch = iota
	BranchChou
	BranchYin
	BranchMao
	BranchChen
	BranchSi
	BranchWu
	BranchWei
	BranchShen
	BranchYou
	BranchXu
	BranchHai
)

// BranchCount は地支の数です。
const BranchCount = 12

var branchNames = [BranchCount]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

// Index は 0 始まりの地支インデックスを返します。
func (b Branch) Index() int { return int(b) }

func (b Branch) String() string {
	if b < 0 || int(b) >= BranchCount {
		return fmt.Sprintf("Branch(%d)", int(b))
	}
	return branchNames[b]
}

// ParseBranch は漢字一文字から地支を返します。
func ParseBranch(name string) (Branch, bool) {
	for i, n := range branchNames {
		if n == name {
			return Branch(i), true
		}
	}
	return 0, false
}

// CycleLength は六十干支の周期長です。
const CycleLength = 60

// GanZhi は天干と地支の組（干支）です。四柱・大運の各柱はすべて GanZhi で表します。
type GanZhi struct {
	Stem   Stem
	Branch Branch
}

// CycleAt は六十干支の i 番目（i mod 60）を返します。負数も受け付けます。
func CycleAt(i int) GanZhi {
	i = mod(i, CycleLength)
	return GanZhi{Stem: Stem(i % StemCount), Branch: Branch(i % BranchCount)}
}

// Index は六十干支における位置（0〜59）を返します。
// 天干と地支の陰陽が揃わない組は周期に存在しないため -1 を返します。
func (g GanZhi) Index() int {
	for i := int(g.Stem); i < CycleLength; i += StemCount {
		if i%BranchCount == int(g.Branch) {
			return i
		}
	}
	return -1
}

// Valid は六十干支に含まれる組かどうかを返します。
func (g GanZhi) Valid() bool {
	return g.Stem >= 0 && int(g.Stem) < StemCount &&
		g.Branch >= 0 && int(g.Branch) < BranchCount &&
		int(g.Stem)%2 == int(g.Branch)%2
}

// String は「甲子」のような二文字ラベルを返します。
func (g GanZhi) String() string {
	return g.Stem.String() + g.Branch.String()
}

// ParseGanZhi は「甲子」のような二文字ラベルを GanZhi に変換します。
func ParseGanZhi(label string) (GanZhi, error) {
	rs := []rune(label)
	if len(rs) != 2 {
		return GanZhi{}, fmt.Errorf("invalid ganzhi label %q", label)
	}
	s, ok := ParseStem(string(rs[0]))
	if !ok {
		return GanZhi{}, fmt.Errorf("invalid stem in %q", label)
	}
	b, ok := ParseBranch(string(rs[1]))
	if !ok {
		return GanZhi{}, fmt.Errorf("invalid branch in %q", label)
	}
	g := GanZhi{Stem: s, Branch: b}
	if !g.Valid() {
		return GanZhi{}, fmt.Errorf("%q is not part of the sexagenary cycle", label)
	}
	return g, nil
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
